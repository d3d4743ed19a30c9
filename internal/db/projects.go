package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/panel-peace/internal/types"
)

// -----------------------------------------------------------------------------
// Project Methods
// -----------------------------------------------------------------------------

const projectColumns = `id, title, issue_number, description, status, progress, due_date,
	metrics, created_by, created_at, updated_at`

func scanProject(row pgx.Row) (*types.Project, error) {
	var p types.Project
	var metricsJSON []byte
	if err := row.Scan(&p.ID, &p.Title, &p.IssueNumber, &p.Description, &p.Status,
		&p.Progress, &p.DueDate, &metricsJSON, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &p.Metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
		}
	}
	return &p, nil
}

// ListProjects returns every project, most recently updated first.
func (db *DB) ListProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY updated_at DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// GetProject retrieves a project by ID. Returns nil if not found.
func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	p, err := scanProject(db.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// CreateProject inserts a project and its initial step chain atomically.
func (db *DB) CreateProject(ctx context.Context, p *types.Project, steps []types.WorkflowStep) (*types.Project, error) {
	metricsJSON, err := json.Marshal(p.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}

	var created *types.Project
	err = db.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = scanProject(tx.QueryRow(ctx,
			`INSERT INTO projects (id, title, issue_number, description, status, progress, due_date, metrics, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING `+projectColumns,
			p.ID, p.Title, p.IssueNumber, p.Description, p.Status, p.Progress, p.DueDate, metricsJSON, p.CreatedBy,
		))
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		for i := range steps {
			if _, err := insertStep(ctx, tx, &steps[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateProject overwrites the mutable columns of a project. Returns nil if
// the project does not exist.
func (db *DB) UpdateProject(ctx context.Context, p *types.Project) (*types.Project, error) {
	metricsJSON, err := json.Marshal(p.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}

	updated, err := scanProject(db.pool.QueryRow(ctx,
		`UPDATE projects
		 SET title = $2, issue_number = $3, description = $4, status = $5,
		     progress = $6, due_date = $7, metrics = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+projectColumns,
		p.ID, p.Title, p.IssueNumber, p.Description, p.Status, p.Progress, p.DueDate, metricsJSON,
	))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return updated, nil
}
