package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pressroomhq/pressroom/internal/auth/domain"
)

type apiKeysRepo struct {
	q queryer
}

const apiKeyColumns = `id, workspace_id, description, hashed_key, created_by, created_at, last_used_at, last_used_ip`

func (r *apiKeysRepo) CreateAPIKey(ctx context.Context, k domain.WorkspaceAPIKey) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO workspace_api_keys (id, workspace_id, description, hashed_key, created_by, created_at, last_used_at, last_used_ip)
		VALUES (?, ?, ?, ?, ?, ?, NULL, NULL)`,
		k.ID, k.WorkspaceID, k.Description, k.HashedKey, k.CreatedBy, k.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *apiKeysRepo) GetAPIKeyByHash(ctx context.Context, hashedKey string) (domain.WorkspaceAPIKey, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM workspace_api_keys WHERE hashed_key = ?`, hashedKey)
	return scanAPIKey(row)
}

func (r *apiKeysRepo) ListAPIKeys(ctx context.Context, workspaceID string) ([]domain.WorkspaceAPIKey, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+apiKeyColumns+` FROM workspace_api_keys
		 WHERE workspace_id = ?
		 ORDER BY created_at DESC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WorkspaceAPIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *apiKeysRepo) CountAPIKeys(ctx context.Context, workspaceID string) (int, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workspace_api_keys WHERE workspace_id = ?`, workspaceID)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *apiKeysRepo) DeleteAPIKey(ctx context.Context, workspaceID, keyID string) error {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM workspace_api_keys WHERE workspace_id = ? AND id = ?`,
		workspaceID, keyID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (r *apiKeysRepo) TouchAPIKeyUsage(ctx context.Context, keyID string, usedAt time.Time, ip string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE workspace_api_keys SET last_used_at = ?, last_used_ip = ?
		WHERE id = ?`,
		usedAt, mapStringNull(ip), keyID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func scanAPIKey(row rowScanner) (domain.WorkspaceAPIKey, error) {
	var k domain.WorkspaceAPIKey
	var lastUsedAt sql.NullTime
	var lastUsedIP sql.NullString
	err := row.Scan(
		&k.ID, &k.WorkspaceID, &k.Description, &k.HashedKey,
		&k.CreatedBy, &k.CreatedAt, &lastUsedAt, &lastUsedIP,
	)
	if err != nil {
		return domain.WorkspaceAPIKey{}, mapNotFound(err)
	}
	k.LastUsedAt = mapNullTimePtr(lastUsedAt)
	k.LastUsedIP = mapNullString(lastUsedIP)
	return k, nil
}
