package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
)

func TestKeyPairRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewKeyPairRepo(db)
	ctx := context.Background()

	kp := &model.KeyPair{
		ID:                  uuid.Must(uuid.NewV4()),
		UserID:              uuid.Must(uuid.NewV4()),
		AccountID:           uuid.NullUUID{UUID: uuid.Must(uuid.NewV4()), Valid: true},
		Type:                hedera.KeyTypeECDSA,
		PublicKey:           "02ab",
		EncryptedPrivateKey: "iv:ct",
	}

	mock.ExpectExec(`INSERT INTO key_pairs \(id, user_id, account_id, key_type, public_key, encrypted_private_key\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)`).
		WithArgs(kp.ID, kp.UserID, kp.AccountID, "ECDSA_SECP256K1", kp.PublicKey, kp.EncryptedPrivateKey).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, kp))
}

func TestKeyPairRepo_ListByUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewKeyPairRepo(db)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	accountID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, user_id, account_id, key_type, public_key, encrypted_private_key, created_at FROM key_pairs WHERE user_id=\$1 ORDER BY created_at`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "account_id", "key_type", "public_key", "encrypted_private_key", "created_at"}).
			AddRow(uuid.Must(uuid.NewV4()), userID, uuid.NullUUID{UUID: accountID, Valid: true}, "ED25519", "aa", "iv:ct1", time.Now()).
			AddRow(uuid.Must(uuid.NewV4()), userID, uuid.NullUUID{}, "ECDSA_SECP256K1", "bb", "iv:ct2", time.Now()))

	pairs, err := r.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Equal(t, hedera.KeyTypeED25519, pairs[0].Type)
	require.True(t, pairs[0].AccountID.Valid)
	require.Equal(t, hedera.KeyTypeECDSA, pairs[1].Type)
	require.False(t, pairs[1].AccountID.Valid)
}
