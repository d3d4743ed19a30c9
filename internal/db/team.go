package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/types"
)

// -----------------------------------------------------------------------------
// Collaborator and Editor Methods
// -----------------------------------------------------------------------------

// ListCollaborators returns the talent assigned to a project.
func (db *DB) ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]types.Collaborator, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, project_id, user_id, role, created_at
		 FROM collaborators WHERE project_id = $1 ORDER BY created_at`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	defer rows.Close()

	var out []types.Collaborator
	for rows.Next() {
		var c types.Collaborator
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.UserID, &c.Role, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collaborators: %w", err)
	}
	return out, nil
}

// AddCollaborator links a user to a project. Returns ErrDuplicate if the
// user is already a collaborator.
func (db *DB) AddCollaborator(ctx context.Context, c *types.Collaborator) (*types.Collaborator, error) {
	var created types.Collaborator
	err := db.pool.QueryRow(ctx,
		`INSERT INTO collaborators (id, project_id, user_id, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, project_id, user_id, role, created_at`,
		c.ID, c.ProjectID, c.UserID, c.Role,
	).Scan(&created.ID, &created.ProjectID, &created.UserID, &created.Role, &created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}
	return &created, nil
}

// RemoveCollaborator deletes a collaborator link.
func (db *DB) RemoveCollaborator(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM collaborators WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEditors returns the editorial staff assigned to a project.
func (db *DB) ListEditors(ctx context.Context, projectID uuid.UUID) ([]types.ProjectEditor, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, project_id, user_id, assigned_by, assignment_role, created_at
		 FROM project_editors WHERE project_id = $1 ORDER BY created_at`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list editors: %w", err)
	}
	defer rows.Close()

	var out []types.ProjectEditor
	for rows.Next() {
		var e types.ProjectEditor
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.UserID, &e.AssignedBy, &e.AssignmentRole, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan editor: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate editors: %w", err)
	}
	return out, nil
}

// AddEditor assigns an editor to a project. Returns ErrDuplicate if the user
// is already assigned.
func (db *DB) AddEditor(ctx context.Context, e *types.ProjectEditor) (*types.ProjectEditor, error) {
	var created types.ProjectEditor
	err := db.pool.QueryRow(ctx,
		`INSERT INTO project_editors (id, project_id, user_id, assigned_by, assignment_role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, project_id, user_id, assigned_by, assignment_role, created_at`,
		e.ID, e.ProjectID, e.UserID, e.AssignedBy, e.AssignmentRole,
	).Scan(&created.ID, &created.ProjectID, &created.UserID, &created.AssignedBy,
		&created.AssignmentRole, &created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to add editor: %w", err)
	}
	return &created, nil
}

// RemoveEditor deletes an editor assignment.
func (db *DB) RemoveEditor(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM project_editors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove editor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
