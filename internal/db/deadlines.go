package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/panel-peace/internal/types"
)

const deadlineColumns = `id, project_id, title, description, due_date, priority, status, created_at, updated_at`

func scanDeadline(row pgx.Row) (*types.Deadline, error) {
	var d types.Deadline
	if err := row.Scan(&d.ID, &d.ProjectID, &d.Title, &d.Description, &d.DueDate,
		&d.Priority, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDeadlines(rows pgx.Rows) ([]types.Deadline, error) {
	defer rows.Close()
	var out []types.Deadline
	for rows.Next() {
		d, err := scanDeadline(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deadline: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deadlines: %w", err)
	}
	return out, nil
}

// ListDeadlines returns a project's deadlines ordered by due date.
func (db *DB) ListDeadlines(ctx context.Context, projectID uuid.UUID) ([]types.Deadline, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+deadlineColumns+` FROM deadlines WHERE project_id = $1 ORDER BY due_date`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list deadlines: %w", err)
	}
	return collectDeadlines(rows)
}

// ListAllDeadlines returns every deadline across all projects.
func (db *DB) ListAllDeadlines(ctx context.Context) ([]types.Deadline, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+deadlineColumns+` FROM deadlines ORDER BY due_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list deadlines: %w", err)
	}
	return collectDeadlines(rows)
}

// GetDeadline retrieves a deadline by ID. Returns nil if not found.
func (db *DB) GetDeadline(ctx context.Context, id uuid.UUID) (*types.Deadline, error) {
	d, err := scanDeadline(db.pool.QueryRow(ctx,
		`SELECT `+deadlineColumns+` FROM deadlines WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deadline: %w", err)
	}
	return d, nil
}

// CreateDeadline inserts a deadline.
func (db *DB) CreateDeadline(ctx context.Context, d *types.Deadline) (*types.Deadline, error) {
	created, err := scanDeadline(db.pool.QueryRow(ctx,
		`INSERT INTO deadlines (id, project_id, title, description, due_date, priority, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+deadlineColumns,
		d.ID, d.ProjectID, d.Title, d.Description, d.DueDate, d.Priority, d.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create deadline: %w", err)
	}
	return created, nil
}

// UpdateDeadline overwrites a deadline's mutable columns. Returns nil if the
// deadline does not exist.
func (db *DB) UpdateDeadline(ctx context.Context, d *types.Deadline) (*types.Deadline, error) {
	updated, err := scanDeadline(db.pool.QueryRow(ctx,
		`UPDATE deadlines
		 SET title = $2, description = $3, due_date = $4, priority = $5, status = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+deadlineColumns,
		d.ID, d.Title, d.Description, d.DueDate, d.Priority, d.Status,
	))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update deadline: %w", err)
	}
	return updated, nil
}
