package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// View keys under which applied filters are persisted.
const (
	ViewArmoury      = "armouryFilters"
	ViewAmmunition   = "ammunitionFilters"
	ViewTransactions = "transactionFilters"
	ViewReports      = "reportsFilters"
)

// ReportView returns the view key for the reports table of category.
func ReportView(category string) string {
	return ViewReports + "." + category
}

// SaveViewFilters stores the applied filters of a view, replacing any
// previous value. Empty values are dropped.
func SaveViewFilters(ctx context.Context, db *sql.DB, workspace, view string, filters map[string]string) error {
	kept := make(map[string]string, len(filters))
	for k, v := range filters {
		if v != "" {
			kept[k] = v
		}
	}
	data, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("encoding filters: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO view_filters (workspace, view, filters) VALUES (?, ?, ?)
		 ON CONFLICT (workspace, view) DO UPDATE SET filters = excluded.filters, updated_at = CURRENT_TIMESTAMP`,
		workspace, view, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving view filters: %w", err)
	}
	return nil
}

// LoadViewFilters returns the persisted filters of a view, or (nil, nil) when
// none were saved.
func LoadViewFilters(ctx context.Context, db *sql.DB, workspace, view string) (map[string]string, error) {
	var data string
	err := db.QueryRowContext(ctx,
		`SELECT filters FROM view_filters WHERE workspace = ? AND view = ?`,
		workspace, view,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading view filters: %w", err)
	}

	var filters map[string]string
	if err := json.Unmarshal([]byte(data), &filters); err != nil {
		return nil, fmt.Errorf("decoding view filters: %w", err)
	}
	return filters, nil
}

// ClearViewFilters removes the persisted filters of a view.
func ClearViewFilters(ctx context.Context, db *sql.DB, workspace, view string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM view_filters WHERE workspace = ? AND view = ?`,
		workspace, view,
	)
	if err != nil {
		return fmt.Errorf("clearing view filters: %w", err)
	}
	return nil
}

// ListViews returns the view keys with persisted filters for a workspace.
func ListViews(ctx context.Context, db *sql.DB, workspace string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT view FROM view_filters WHERE workspace = ? ORDER BY view`,
		workspace,
	)
	if err != nil {
		return nil, fmt.Errorf("listing views: %w", err)
	}
	defer rows.Close()

	var views []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning view: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
