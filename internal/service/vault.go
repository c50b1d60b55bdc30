package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/gomintco/gomint-api/internal/crypto/envelope"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
	"github.com/gomintco/gomint-api/internal/repository"
)

// KeyVault generates key pairs and stores them with the private key encrypted
// under the owning user's escrow key.
type KeyVault struct {
	keys repository.KeyPairRepository
}

// NewKeyVault constructs a key vault.
func NewKeyVault(keys repository.KeyPairRepository) *KeyVault {
	return &KeyVault{keys: keys}
}

// Generate creates a fresh key pair of the requested type and encrypts its
// private key under the caller-supplied escrow key, which must already be the
// resolved plaintext form. The returned KeyPair is pending: the caller
// attaches the owning user/account and persists it with Save.
func (v *KeyVault) Generate(escrowKey string, typ hedera.KeyType) (*model.KeyPair, hedera.PrivateKey, error) {
	priv, err := hedera.GeneratePrivateKey(typ)
	if err != nil {
		return nil, hedera.PrivateKey{}, err
	}
	enc, err := envelope.Encrypt(priv.String(), escrowKey)
	if err != nil {
		return nil, hedera.PrivateKey{}, fmt.Errorf("encrypt private key: %w", err)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, hedera.PrivateKey{}, err
	}
	kp := &model.KeyPair{
		ID:                  id,
		Type:                typ,
		PublicKey:           priv.PublicKey().String(),
		EncryptedPrivateKey: enc,
	}
	return kp, priv, nil
}

// Save persists a pending key pair. Persistence failures carry the underlying
// cause; no retry is attempted here.
func (v *KeyVault) Save(ctx context.Context, kp *model.KeyPair) error {
	if err := v.keys.Create(ctx, kp); err != nil {
		return fmt.Errorf("persist key pair: %w", err)
	}
	return nil
}

// DecryptKeyPair recovers the private key of a stored pair using the owning
// user's resolved escrow key.
func DecryptKeyPair(kp model.KeyPair, escrowKey string) (hedera.PrivateKey, error) {
	plain, err := envelope.Decrypt(kp.EncryptedPrivateKey, escrowKey)
	if err != nil {
		return hedera.PrivateKey{}, err
	}
	return hedera.ParsePrivateKey(kp.Type, plain)
}
