package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/armoury/internal/model"
)

// RecordActivity appends an entry to the activity log.
func RecordActivity(ctx context.Context, db *sql.DB, workspace, action, subject, detail string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO activity (workspace, action, subject, detail) VALUES (?, ?, ?, ?)`,
		workspace, action, subject, detail,
	)
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}
	return nil
}

// ListActivity returns the most recent activity entries, newest first.
func ListActivity(ctx context.Context, db *sql.DB, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, workspace, action, subject, detail, created_at
		 FROM activity ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	var out []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Workspace, &a.Action, &a.Subject, &a.Detail, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
