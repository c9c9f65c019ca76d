package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erazemk/armoury/internal/model"
)

// ListTransactions returns every issue transaction.
func (c *Client) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	var txs []model.Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions/list", nil, &txs); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}

// DeleteTransaction removes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/transactions/"+escape(id), nil, nil); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return nil
}

// Issue issues assets to an officer.
func (c *Client) Issue(ctx context.Context, req model.IssueRequest) error {
	if err := c.do(ctx, http.MethodPost, "/api/transactions/issue", req, nil); err != nil {
		return fmt.Errorf("issuing assets: %w", err)
	}
	return nil
}

// Return records the return of assets.
func (c *Client) Return(ctx context.Context, req model.ReturnRequest) error {
	if err := c.do(ctx, http.MethodPost, "/api/transactions/return", req, nil); err != nil {
		return fmt.Errorf("returning assets: %w", err)
	}
	return nil
}
