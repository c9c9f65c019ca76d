package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erazemk/armoury/internal/model"
)

// ListOfficers returns every registered officer.
func (c *Client) ListOfficers(ctx context.Context) ([]model.Officer, error) {
	var officers []model.Officer
	if err := c.do(ctx, http.MethodGet, "/api/officer", nil, &officers); err != nil {
		return nil, fmt.Errorf("listing officers: %w", err)
	}
	return officers, nil
}

// CreateOfficer registers an officer.
func (c *Client) CreateOfficer(ctx context.Context, o model.Officer) (*model.Officer, error) {
	var out model.Officer
	if err := c.do(ctx, http.MethodPost, "/api/officer", o, &out); err != nil {
		return nil, fmt.Errorf("creating officer: %w", err)
	}
	return &out, nil
}
