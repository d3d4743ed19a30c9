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
// Workflow Step Methods
// -----------------------------------------------------------------------------

const stepColumns = `id, project_id, step_type, title, status, progress, sort_order,
	assignee_id, due_date, ratings, completed_at, created_at, updated_at`

func scanStep(row pgx.Row) (*types.WorkflowStep, error) {
	var s types.WorkflowStep
	var ratingsJSON []byte
	if err := row.Scan(&s.ID, &s.ProjectID, &s.StepType, &s.Title, &s.Status, &s.Progress,
		&s.SortOrder, &s.AssigneeID, &s.DueDate, &ratingsJSON, &s.CompletedAt,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if len(ratingsJSON) > 0 {
		s.Ratings = &types.QualityRatings{}
		if err := json.Unmarshal(ratingsJSON, s.Ratings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ratings: %w", err)
		}
	}
	return &s, nil
}

func marshalRatings(r *types.QualityRatings) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ratings: %w", err)
	}
	return b, nil
}

func insertStep(ctx context.Context, q querier, s *types.WorkflowStep) (*types.WorkflowStep, error) {
	ratingsJSON, err := marshalRatings(s.Ratings)
	if err != nil {
		return nil, err
	}
	created, err := scanStep(q.QueryRow(ctx,
		`INSERT INTO workflow_steps (id, project_id, step_type, title, status, progress, sort_order,
		                             assignee_id, due_date, ratings, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+stepColumns,
		s.ID, s.ProjectID, s.StepType, s.Title, s.Status, s.Progress, s.SortOrder,
		s.AssigneeID, s.DueDate, ratingsJSON, s.CompletedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create step: %w", err)
	}
	return created, nil
}

func updateSortOrders(ctx context.Context, q querier, steps []types.WorkflowStep) error {
	for _, s := range steps {
		if _, err := q.Exec(ctx,
			`UPDATE workflow_steps SET sort_order = $2, updated_at = NOW() WHERE id = $1`,
			s.ID, s.SortOrder,
		); err != nil {
			return fmt.Errorf("failed to reorder step: %w", err)
		}
	}
	return nil
}

// ListSteps returns a project's steps ordered by sort_order.
func (db *DB) ListSteps(ctx context.Context, projectID uuid.UUID) ([]types.WorkflowStep, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+stepColumns+` FROM workflow_steps
		 WHERE project_id = $1
		 ORDER BY sort_order, created_at`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []types.WorkflowStep
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate steps: %w", err)
	}
	return steps, nil
}

// GetStep retrieves a step by ID. Returns nil if not found.
func (db *DB) GetStep(ctx context.Context, id uuid.UUID) (*types.WorkflowStep, error) {
	s, err := scanStep(db.pool.QueryRow(ctx,
		`SELECT `+stepColumns+` FROM workflow_steps WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get step: %w", err)
	}
	return s, nil
}

// CreateStep inserts step and persists the sort orders of any siblings that
// shifted to make room for it, in one transaction.
func (db *DB) CreateStep(ctx context.Context, step *types.WorkflowStep, shifted []types.WorkflowStep) (*types.WorkflowStep, error) {
	var created *types.WorkflowStep
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if err := updateSortOrders(ctx, tx, shifted); err != nil {
			return err
		}
		var err error
		created, err = insertStep(ctx, tx, step)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateStep overwrites a step's mutable columns other than sort_order.
// Returns nil if the step does not exist.
func (db *DB) UpdateStep(ctx context.Context, s *types.WorkflowStep) (*types.WorkflowStep, error) {
	ratingsJSON, err := marshalRatings(s.Ratings)
	if err != nil {
		return nil, err
	}
	updated, err := scanStep(db.pool.QueryRow(ctx,
		`UPDATE workflow_steps
		 SET title = $2, status = $3, progress = $4, assignee_id = $5, due_date = $6,
		     ratings = $7, completed_at = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+stepColumns,
		s.ID, s.Title, s.Status, s.Progress, s.AssigneeID, s.DueDate, ratingsJSON, s.CompletedAt,
	))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update step: %w", err)
	}
	return updated, nil
}

// ReorderSteps persists new sort orders. The uniqueness constraint on
// (project_id, sort_order) is deferred, so swaps commit cleanly.
func (db *DB) ReorderSteps(ctx context.Context, steps []types.WorkflowStep) error {
	if len(steps) == 0 {
		return nil
	}
	return db.inTx(ctx, func(tx pgx.Tx) error {
		return updateSortOrders(ctx, tx, steps)
	})
}

// DeleteStep removes a step and closes the gap it leaves in the order.
func (db *DB) DeleteStep(ctx context.Context, id uuid.UUID, shifted []types.WorkflowStep) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM workflow_steps WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete step: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return updateSortOrders(ctx, tx, shifted)
	})
}
