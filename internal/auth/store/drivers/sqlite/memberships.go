package sqlite

import (
	"context"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
)

type membershipsRepo struct {
	q queryer
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO memberships (workspace_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)`,
		m.WorkspaceID, m.UserID, string(m.Role), m.JoinedAt,
	)
	return mapConstraint(err)
}

func (r *membershipsRepo) GetMembership(ctx context.Context, workspaceID, userID string) (domain.Membership, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT workspace_id, user_id, role, joined_at
		FROM memberships WHERE workspace_id = ? AND user_id = ?`,
		workspaceID, userID)

	var m domain.Membership
	var role string
	if err := row.Scan(&m.WorkspaceID, &m.UserID, &role, &m.JoinedAt); err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	m.Role = domain.Role(role)
	return m, nil
}

func (r *membershipsRepo) ListMemberships(ctx context.Context, workspaceID string) ([]domain.Membership, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT workspace_id, user_id, role, joined_at
		FROM memberships WHERE workspace_id = ?
		ORDER BY joined_at ASC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Membership
	for rows.Next() {
		var m domain.Membership
		var role string
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *membershipsRepo) UpdateMembershipRole(ctx context.Context, workspaceID, userID string, role domain.Role) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE memberships SET role = ?
		WHERE workspace_id = ? AND user_id = ?`,
		string(role), workspaceID, userID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (r *membershipsRepo) DeleteMembership(ctx context.Context, workspaceID, userID string) error {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM memberships WHERE workspace_id = ? AND user_id = ?`,
		workspaceID, userID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (r *membershipsRepo) CountOwners(ctx context.Context, workspaceID string) (int, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM memberships
		WHERE workspace_id = ? AND role = ?`,
		workspaceID, string(domain.RoleOwner))

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
