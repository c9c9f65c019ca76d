package listview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// ErrEmptySelection is returned when a bulk action runs with nothing selected.
var ErrEmptySelection = errors.New("select at least one record")

// BulkLimit caps concurrent backend calls during a bulk action.
const BulkLimit = 8

// BulkResult reports the outcome of a bulk action per id.
type BulkResult struct {
	Succeeded []string
	Failed    map[string]error
}

// Err returns a single generic error when any id failed.
func (r BulkResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d operations failed", len(r.Failed), len(r.Failed)+len(r.Succeeded))
}

// Each runs fn for every id concurrently and waits for all of them. Failures
// are collected, not short-circuited, so every id is attempted once.
func Each(ctx context.Context, ids []string, fn func(ctx context.Context, id string) error) BulkResult {
	res := BulkResult{Failed: make(map[string]error)}
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(BulkLimit)
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = fn(ctx, id)
			return nil
		})
	}
	g.Wait()

	for i, id := range ids {
		if errs[i] != nil {
			slog.Error("bulk action failed", "id", id, "error", errs[i])
			res.Failed[id] = errs[i]
		} else {
			res.Succeeded = append(res.Succeeded, id)
		}
	}
	return res
}
