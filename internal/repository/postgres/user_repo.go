package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, pwd_hash, salt_auth, escrow_key, has_encryption_key, network)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.PwdHash, u.SaltAuth, u.EscrowKey, u.HasEncryptionKey, string(u.Network))
	if isUniqueViolation(err) {
		return errs.ErrDuplicateEntity
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `
SELECT id, username, pwd_hash, salt_auth, escrow_key, has_encryption_key, network, created_at
FROM users WHERE id=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
SELECT id, username, pwd_hash, salt_auth, escrow_key, has_encryption_key, network, created_at
FROM users WHERE username=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, username))
}

// SetEscrowKey replaces the stored escrow key and its encryption flag.
func (r *UserRepo) SetEscrowKey(ctx context.Context, id uuid.UUID, escrowKey string, hasEncryptionKey bool) error {
	const q = `
UPDATE users SET escrow_key = $2, has_encryption_key = $3 WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, id, escrowKey, hasEncryptionKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *UserRepo) scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var network string
	err := row.Scan(&u.ID, &u.Username, &u.PwdHash, &u.SaltAuth, &u.EscrowKey, &u.HasEncryptionKey, &network, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	u.Network = hedera.Network(network)
	return &u, nil
}
