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

// AccountRepo implements AccountRepository using PostgreSQL.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// Create inserts a new account row.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	const q = `
INSERT INTO accounts (id, user_id, ledger_id, alias)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, a.ID, a.UserID, a.LedgerID, a.Alias)
	if isUniqueViolation(err) {
		return errs.ErrDuplicateEntity
	}
	return err
}

const accountCols = `id, user_id, ledger_id, alias, created_at`

// GetByLedgerID selects an account by canonical ledger ID. No ownership
// scoping on this path.
func (r *AccountRepo) GetByLedgerID(ctx context.Context, ledgerID string) (*model.Account, error) {
	const q = `
SELECT ` + accountCols + ` FROM accounts WHERE ledger_id=$1`
	return scanAccount(r.db.Pool.QueryRow(ctx, q, ledgerID))
}

// GetByAlias selects the account owned by userID under the alias.
func (r *AccountRepo) GetByAlias(ctx context.Context, userID uuid.UUID, alias string) (*model.Account, error) {
	const q = `
SELECT ` + accountCols + ` FROM accounts WHERE user_id=$1 AND alias=$2`
	return scanAccount(r.db.Pool.QueryRow(ctx, q, userID, alias))
}

// GetByPublicKeyFragment finds the first of the user's accounts whose
// authorizing keys contain the fragment. First match by creation order wins.
func (r *AccountRepo) GetByPublicKeyFragment(ctx context.Context, userID uuid.UUID, fragment string) (*model.Account, error) {
	const q = `
SELECT a.id, a.user_id, a.ledger_id, a.alias, a.created_at
FROM accounts a
JOIN key_pairs k ON k.account_id = a.id
WHERE a.user_id=$1 AND position($2 in k.public_key) > 0
ORDER BY a.created_at
LIMIT 1`
	return scanAccount(r.db.Pool.QueryRow(ctx, q, userID, fragment))
}

// ListByLedgerIDs bulk-loads accounts hydrated with key pairs and owners.
func (r *AccountRepo) ListByLedgerIDs(ctx context.Context, ledgerIDs []string) ([]model.Account, error) {
	const q = `
SELECT ` + accountCols + ` FROM accounts WHERE ledger_id = ANY($1)`
	rows, err := r.db.Pool.Query(ctx, q, ledgerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.LedgerID, &a.Alias, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		if err := r.hydrate(ctx, &accounts[i]); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

// hydrate attaches the account's key pairs and owning user.
func (r *AccountRepo) hydrate(ctx context.Context, a *model.Account) error {
	const kq = `
SELECT id, user_id, account_id, key_type, public_key, encrypted_private_key, created_at
FROM key_pairs WHERE account_id=$1`
	rows, err := r.db.Pool.Query(ctx, kq, a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var kp model.KeyPair
		var keyType string
		if err := rows.Scan(&kp.ID, &kp.UserID, &kp.AccountID, &keyType, &kp.PublicKey, &kp.EncryptedPrivateKey, &kp.CreatedAt); err != nil {
			return err
		}
		kp.Type = hedera.KeyType(keyType)
		a.Keys = append(a.Keys, kp)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const uq = `
SELECT id, username, pwd_hash, salt_auth, escrow_key, has_encryption_key, network, created_at
FROM users WHERE id=$1`
	var u model.User
	var network string
	err = r.db.Pool.QueryRow(ctx, uq, a.UserID).
		Scan(&u.ID, &u.Username, &u.PwdHash, &u.SaltAuth, &u.EscrowKey, &u.HasEncryptionKey, &network, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return errs.ErrNotFound
	}
	u.Network = hedera.Network(network)
	a.Owner = &u
	return nil
}

// UpdateAlias changes the account alias, scoped to the owning user.
func (r *AccountRepo) UpdateAlias(ctx context.Context, userID uuid.UUID, ledgerID, alias string) error {
	const q = `
UPDATE accounts SET alias = $3 WHERE user_id = $1 AND ledger_id = $2`
	tag, err := r.db.Pool.Exec(ctx, q, userID, ledgerID, alias)
	if isUniqueViolation(err) {
		return errs.ErrDuplicateEntity
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.LedgerID, &a.Alias, &a.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrAccountNotFound
	}
	return &a, nil
}
