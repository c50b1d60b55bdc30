package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
)

func TestAccountRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	a := &model.Account{
		ID:       uuid.Must(uuid.NewV4()),
		UserID:   uuid.Must(uuid.NewV4()),
		LedgerID: "0.0.1001",
		Alias:    "main",
	}

	mock.ExpectExec(`INSERT INTO accounts \(id, user_id, ledger_id, alias\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(a.ID, a.UserID, a.LedgerID, a.Alias).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, a))

	mock.ExpectExec(`INSERT INTO accounts \(id, user_id, ledger_id, alias\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(a.ID, a.UserID, a.LedgerID, a.Alias).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, a), errs.ErrDuplicateEntity)
}

func TestAccountRepo_GetByLedgerID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, user_id, ledger_id, alias, created_at FROM accounts WHERE ledger_id=\$1`).
		WithArgs("0.0.1001").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "ledger_id", "alias", "created_at"}).
			AddRow(id, userID, "0.0.1001", "main", time.Now()))
	a, err := r.GetByLedgerID(ctx, "0.0.1001")
	require.NoError(t, err)
	require.Equal(t, "main", a.Alias)

	mock.ExpectQuery(`SELECT id, user_id, ledger_id, alias, created_at FROM accounts WHERE ledger_id=\$1`).
		WithArgs("0.0.404").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByLedgerID(ctx, "0.0.404")
	require.ErrorIs(t, err, errs.ErrAccountNotFound)
}

func TestAccountRepo_GetByAlias(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, user_id, ledger_id, alias, created_at FROM accounts WHERE user_id=\$1 AND alias=\$2`).
		WithArgs(userID, "savings").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "ledger_id", "alias", "created_at"}).
			AddRow(id, userID, "0.0.1002", "savings", time.Now()))
	a, err := r.GetByAlias(ctx, userID, "savings")
	require.NoError(t, err)
	require.Equal(t, "0.0.1002", a.LedgerID)
}

func TestAccountRepo_GetByPublicKeyFragment(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT a.id, a.user_id, a.ledger_id, a.alias, a.created_at FROM accounts a JOIN key_pairs k ON k.account_id = a.id WHERE a.user_id=\$1 AND position\(\$2 in k.public_key\) > 0 ORDER BY a.created_at LIMIT 1`).
		WithArgs(userID, "feedface").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "ledger_id", "alias", "created_at"}).
			AddRow(id, userID, "0.0.1003", "minter", time.Now()))
	a, err := r.GetByPublicKeyFragment(ctx, userID, "feedface")
	require.NoError(t, err)
	require.Equal(t, "minter", a.Alias)

	mock.ExpectQuery(`SELECT a.id, a.user_id, a.ledger_id, a.alias, a.created_at FROM accounts a JOIN key_pairs k`).
		WithArgs(userID, "nope").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByPublicKeyFragment(ctx, userID, "nope")
	require.ErrorIs(t, err, errs.ErrAccountNotFound)
}

func TestAccountRepo_ListByLedgerIDs_Hydrates(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	accountID := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())
	keyID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, user_id, ledger_id, alias, created_at FROM accounts WHERE ledger_id = ANY\(\$1\)`).
		WithArgs([]string{"0.0.1001"}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "ledger_id", "alias", "created_at"}).
			AddRow(accountID, userID, "0.0.1001", "main", time.Now()))
	mock.ExpectQuery(`SELECT id, user_id, account_id, key_type, public_key, encrypted_private_key, created_at FROM key_pairs WHERE account_id=\$1`).
		WithArgs(accountID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "account_id", "key_type", "public_key", "encrypted_private_key", "created_at"}).
			AddRow(keyID, userID, uuid.NullUUID{UUID: accountID, Valid: true}, "ED25519", "aabb", "iv:ct", time.Now()))
	mock.ExpectQuery(`SELECT id, username, pwd_hash, salt_auth, escrow_key, has_encryption_key, network, created_at FROM users WHERE id=\$1`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "pwd_hash", "salt_auth", "escrow_key", "has_encryption_key", "network", "created_at"}).
			AddRow(userID, "alice", []byte("h"), []byte("s"), "ek", false, "testnet", time.Now()))

	accounts, err := r.ListByLedgerIDs(ctx, []string{"0.0.1001"})
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Len(t, accounts[0].Keys, 1)
	require.Equal(t, hedera.KeyTypeED25519, accounts[0].Keys[0].Type)
	require.NotNil(t, accounts[0].Owner)
	require.Equal(t, "alice", accounts[0].Owner.Username)
}

func TestAccountRepo_UpdateAlias(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE accounts SET alias = \$3 WHERE user_id = \$1 AND ledger_id = \$2`).
		WithArgs(userID, "0.0.1001", "renamed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.UpdateAlias(ctx, userID, "0.0.1001", "renamed"))

	mock.ExpectExec(`UPDATE accounts SET alias = \$3 WHERE user_id = \$1 AND ledger_id = \$2`).
		WithArgs(userID, "0.0.9999", "renamed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.UpdateAlias(ctx, userID, "0.0.9999", "renamed"), errs.ErrAccountNotFound)

	mock.ExpectExec(`UPDATE accounts SET alias = \$3 WHERE user_id = \$1 AND ledger_id = \$2`).
		WithArgs(userID, "0.0.1001", "taken").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.UpdateAlias(ctx, userID, "0.0.1001", "taken"), errs.ErrDuplicateEntity)
}
