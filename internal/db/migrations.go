package db

import (
	"context"
	"fmt"
	"log"
)

// schema is applied in order by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'editor' CHECK (role IN ('editor', 'talent', 'admin')),
		password_hash TEXT NOT NULL DEFAULT '',
		password_set BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title TEXT NOT NULL,
		issue_number TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'in_progress'
			CHECK (status IN ('in_progress', 'needs_review', 'delayed', 'completed')),
		progress INTEGER NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
		due_date TIMESTAMPTZ,
		metrics JSONB NOT NULL DEFAULT '{}',
		created_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS workflow_steps (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		step_type TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'not_started'
			CHECK (status IN ('not_started', 'in_progress', 'review', 'completed', 'delayed')),
		progress INTEGER NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
		sort_order INTEGER NOT NULL,
		assignee_id UUID REFERENCES users(id) ON DELETE SET NULL,
		due_date TIMESTAMPTZ,
		ratings JSONB,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT workflow_steps_order_unique UNIQUE (project_id, sort_order) DEFERRABLE INITIALLY DEFERRED
	)`,
	`CREATE TABLE IF NOT EXISTS feedback_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		step_id UUID REFERENCES workflow_steps(id) ON DELETE SET NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'in_progress', 'resolved', 'rejected')),
		asset_type TEXT NOT NULL DEFAULT '',
		requested_by UUID NOT NULL REFERENCES users(id),
		assigned_to UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS feedback_comments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		feedback_id UUID NOT NULL REFERENCES feedback_items(id) ON DELETE CASCADE,
		author_id UUID NOT NULL REFERENCES users(id),
		body TEXT NOT NULL,
		seq BIGSERIAL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS deadlines (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date TIMESTAMPTZ NOT NULL,
		priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS collaborators (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (project_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS project_editors (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		assigned_by UUID NOT NULL REFERENCES users(id),
		assignment_role TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (project_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS file_links (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		step_id UUID NOT NULL REFERENCES workflow_steps(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'misc' CHECK (category IN ('artwork', 'script', 'misc')),
		source TEXT NOT NULL DEFAULT 'link' CHECK (source IN ('link', 'upload')),
		uploaded_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_steps_project ON workflow_steps(project_id, sort_order)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_items_project ON feedback_items(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_comments_feedback ON feedback_comments(feedback_id, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_deadlines_due ON deadlines(due_date)`,
}

// Migrate creates any missing tables and indexes.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
	}
	log.Printf("[db] applied %d schema statements", len(schema))
	return nil
}
