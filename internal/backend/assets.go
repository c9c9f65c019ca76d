package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erazemk/armoury/internal/model"
)

// ListAssets returns every asset of every category.
func (c *Client) ListAssets(ctx context.Context) ([]model.Asset, error) {
	var assets []model.Asset
	if err := c.do(ctx, http.MethodGet, "/api/weapons", nil, &assets); err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	return assets, nil
}

// GetAsset returns one asset, or (nil, nil) when the backend does not know it.
func (c *Client) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	var a model.Asset
	if err := c.do(ctx, http.MethodGet, "/api/weapons/single/"+escape(id), nil, &a); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return &a, nil
}

// CreateAsset registers a new asset and returns the stored copy.
func (c *Client) CreateAsset(ctx context.Context, a model.Asset) (*model.Asset, error) {
	var out model.Asset
	if err := c.do(ctx, http.MethodPost, "/api/weapons", a, &out); err != nil {
		return nil, fmt.Errorf("creating asset: %w", err)
	}
	return &out, nil
}

// UpdateAsset patches an asset with the given fields.
func (c *Client) UpdateAsset(ctx context.Context, id string, fields map[string]any) error {
	if err := c.do(ctx, http.MethodPatch, "/api/weapons/update/"+escape(id), fields, nil); err != nil {
		return fmt.Errorf("updating asset: %w", err)
	}
	return nil
}

// DeleteAsset removes an asset.
func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/weapons/"+escape(id), nil, nil); err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	return nil
}

// ListItems returns the ammunition lots.
func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, http.MethodGet, "/api/items", nil, &items); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// DeleteItem removes an ammunition lot.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/items/"+escape(id), nil, nil); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}
