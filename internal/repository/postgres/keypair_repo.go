package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
)

// KeyPairRepo implements KeyPairRepository using PostgreSQL.
type KeyPairRepo struct{ db *DB }

// NewKeyPairRepo constructs a key pair repository.
func NewKeyPairRepo(db *DB) *KeyPairRepo { return &KeyPairRepo{db: db} }

// Create persists a pending key pair.
func (r *KeyPairRepo) Create(ctx context.Context, kp *model.KeyPair) error {
	const q = `
INSERT INTO key_pairs (id, user_id, account_id, key_type, public_key, encrypted_private_key)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, kp.ID, kp.UserID, kp.AccountID, string(kp.Type), kp.PublicKey, kp.EncryptedPrivateKey)
	return err
}

// ListByUser returns all key pairs owned by the user.
func (r *KeyPairRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.KeyPair, error) {
	const q = `
SELECT id, user_id, account_id, key_type, public_key, encrypted_private_key, created_at
FROM key_pairs WHERE user_id=$1 ORDER BY created_at`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.KeyPair
	for rows.Next() {
		var kp model.KeyPair
		var keyType string
		if err := rows.Scan(&kp.ID, &kp.UserID, &kp.AccountID, &keyType, &kp.PublicKey, &kp.EncryptedPrivateKey, &kp.CreatedAt); err != nil {
			return nil, err
		}
		kp.Type = hedera.KeyType(keyType)
		out = append(out, kp)
	}
	return out, rows.Err()
}
