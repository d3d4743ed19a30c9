package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/panel-peace/internal/types"
)

// -----------------------------------------------------------------------------
// Feedback Methods
// -----------------------------------------------------------------------------

const feedbackColumns = `id, project_id, step_id, title, description, priority, status,
	asset_type, requested_by, assigned_to, created_at, updated_at`

func scanFeedback(row pgx.Row) (*types.FeedbackItem, error) {
	var f types.FeedbackItem
	if err := row.Scan(&f.ID, &f.ProjectID, &f.StepID, &f.Title, &f.Description, &f.Priority,
		&f.Status, &f.AssetType, &f.RequestedBy, &f.AssignedTo, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFeedback returns a project's feedback items, newest first.
func (db *DB) ListFeedback(ctx context.Context, projectID uuid.UUID) ([]types.FeedbackItem, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+feedbackColumns+` FROM feedback_items
		 WHERE project_id = $1
		 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var items []types.FeedbackItem
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return items, nil
}

// GetFeedback retrieves a feedback item by ID. Returns nil if not found.
func (db *DB) GetFeedback(ctx context.Context, id uuid.UUID) (*types.FeedbackItem, error) {
	f, err := scanFeedback(db.pool.QueryRow(ctx,
		`SELECT `+feedbackColumns+` FROM feedback_items WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return f, nil
}

// CreateFeedback inserts a feedback item.
func (db *DB) CreateFeedback(ctx context.Context, f *types.FeedbackItem) (*types.FeedbackItem, error) {
	created, err := scanFeedback(db.pool.QueryRow(ctx,
		`INSERT INTO feedback_items (id, project_id, step_id, title, description, priority, status,
		                             asset_type, requested_by, assigned_to)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+feedbackColumns,
		f.ID, f.ProjectID, f.StepID, f.Title, f.Description, f.Priority, f.Status,
		f.AssetType, f.RequestedBy, f.AssignedTo,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return created, nil
}

// UpdateFeedback overwrites a feedback item's mutable columns. Returns nil if
// the item does not exist.
func (db *DB) UpdateFeedback(ctx context.Context, f *types.FeedbackItem) (*types.FeedbackItem, error) {
	updated, err := scanFeedback(db.pool.QueryRow(ctx,
		`UPDATE feedback_items
		 SET title = $2, description = $3, priority = $4, status = $5, assigned_to = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+feedbackColumns,
		f.ID, f.Title, f.Description, f.Priority, f.Status, f.AssignedTo,
	))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}
	return updated, nil
}

// CountOpenFeedback counts feedback items that are pending or in progress.
func (db *DB) CountOpenFeedback(ctx context.Context) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM feedback_items WHERE status IN ('pending', 'in_progress')`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count open feedback: %w", err)
	}
	return n, nil
}

// ListComments returns a feedback item's comments in creation order.
func (db *DB) ListComments(ctx context.Context, feedbackID uuid.UUID) ([]types.Comment, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, feedback_id, author_id, body, created_at
		 FROM feedback_comments
		 WHERE feedback_id = $1
		 ORDER BY seq`,
		feedbackID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []types.Comment
	for rows.Next() {
		var c types.Comment
		if err := rows.Scan(&c.ID, &c.FeedbackID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

// CreateComment appends a comment to a feedback item.
func (db *DB) CreateComment(ctx context.Context, c *types.Comment) (*types.Comment, error) {
	var created types.Comment
	err := db.pool.QueryRow(ctx,
		`INSERT INTO feedback_comments (id, feedback_id, author_id, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, feedback_id, author_id, body, created_at`,
		c.ID, c.FeedbackID, c.AuthorID, c.Body,
	).Scan(&created.ID, &created.FeedbackID, &created.AuthorID, &created.Body, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &created, nil
}
