package sqlite

import (
	"context"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
)

type invitationsRepo struct {
	q queryer
}

const invitationColumns = `id, workspace_id, email, role, invited_by, token, status, invited_at, expires_at`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invitations (id, workspace_id, email, role, invited_by, token, status, invited_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.WorkspaceID, inv.Email, string(inv.Role), inv.InvitedBy,
		inv.Token, string(inv.Status), inv.InvitedAt, inv.ExpiresAt,
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = ?`, token)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetPendingInvitation(ctx context.Context, workspaceID, email string) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE workspace_id = ? AND email = ? AND status = 'pending'`,
		workspaceID, email)
	return scanInvitation(row)
}

func (r *invitationsRepo) ListInvitationsByWorkspace(ctx context.Context, workspaceID string) ([]domain.Invitation, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE workspace_id = ?
		 ORDER BY invited_at DESC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) UpdateInvitationStatus(ctx context.Context, id string, status domain.InvitationStatus) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invitations SET status = ? WHERE id = ?`,
		string(status), id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context, cutoff time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM invitations WHERE status = 'pending' AND expires_at <= ?`, cutoff)
	return err
}

func scanInvitation(row rowScanner) (domain.Invitation, error) {
	var inv domain.Invitation
	var role, status string
	err := row.Scan(
		&inv.ID, &inv.WorkspaceID, &inv.Email, &role, &inv.InvitedBy,
		&inv.Token, &status, &inv.InvitedAt, &inv.ExpiresAt,
	)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	inv.Role = domain.Role(role)
	inv.Status = domain.InvitationStatus(status)
	return inv, nil
}
