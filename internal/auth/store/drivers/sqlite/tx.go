package sqlite

import (
	"context"
	"database/sql"

	"github.com/pressroomhq/pressroom/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits/rollbacks; outer DB stays open

// Ping is a no-op inside a transaction; the connection is already live.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return sql.ErrTxDone } // migrations run before any tx

func (t *txStore) Users() store.Users                     { return &usersRepo{q: t.tx} }
func (t *txStore) Workspaces() store.Workspaces           { return &workspacesRepo{q: t.tx} }
func (t *txStore) Memberships() store.Memberships         { return &membershipsRepo{q: t.tx} }
func (t *txStore) Sessions() store.Sessions               { return &sessionsRepo{q: t.tx} }
func (t *txStore) Invitations() store.Invitations         { return &invitationsRepo{q: t.tx} }
func (t *txStore) APIKeys() store.APIKeys                 { return &apiKeysRepo{q: t.tx} }
func (t *txStore) EmailRateLimits() store.EmailRateLimits { return &emailRateLimitsRepo{q: t.tx} }
