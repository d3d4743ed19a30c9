package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/types"
)

// ListFileLinks returns the files attached to a step, oldest first.
func (db *DB) ListFileLinks(ctx context.Context, stepID uuid.UUID) ([]types.FileLink, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, step_id, name, url, category, source, uploaded_by, created_at
		 FROM file_links WHERE step_id = $1 ORDER BY created_at`,
		stepID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list file links: %w", err)
	}
	defer rows.Close()

	var out []types.FileLink
	for rows.Next() {
		var f types.FileLink
		if err := rows.Scan(&f.ID, &f.StepID, &f.Name, &f.URL, &f.Category, &f.Source,
			&f.UploadedBy, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file link: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file links: %w", err)
	}
	return out, nil
}

// CreateFileLink attaches a file link to a step.
func (db *DB) CreateFileLink(ctx context.Context, f *types.FileLink) (*types.FileLink, error) {
	var created types.FileLink
	err := db.pool.QueryRow(ctx,
		`INSERT INTO file_links (id, step_id, name, url, category, source, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, step_id, name, url, category, source, uploaded_by, created_at`,
		f.ID, f.StepID, f.Name, f.URL, f.Category, f.Source, f.UploadedBy,
	).Scan(&created.ID, &created.StepID, &created.Name, &created.URL, &created.Category,
		&created.Source, &created.UploadedBy, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create file link: %w", err)
	}
	return &created, nil
}

// DeleteFileLink removes a file link.
func (db *DB) DeleteFileLink(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM file_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
