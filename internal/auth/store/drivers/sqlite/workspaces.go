package sqlite

import (
	"context"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
)

type workspacesRepo struct {
	q queryer
}

const workspaceColumns = `id, name, slug, created_at, updated_at`

func (r *workspacesRepo) CreateWorkspace(ctx context.Context, w domain.Workspace) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO workspaces (id, name, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.Slug, w.CreatedAt, w.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *workspacesRepo) GetWorkspaceByID(ctx context.Context, id string) (domain.Workspace, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE id = ?`, id)
	return scanWorkspace(row)
}

func (r *workspacesRepo) GetWorkspaceBySlug(ctx context.Context, slug string) (domain.Workspace, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE slug = ?`, slug)
	return scanWorkspace(row)
}

func scanWorkspace(row rowScanner) (domain.Workspace, error) {
	var w domain.Workspace
	err := row.Scan(&w.ID, &w.Name, &w.Slug, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return domain.Workspace{}, mapNotFound(err)
	}
	return w, nil
}
