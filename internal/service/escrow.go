package service

import (
	"github.com/gomintco/gomint-api/internal/crypto/envelope"
	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/model"
)

// ResolveEscrowKey returns the usable plaintext escrow key for the user.
//
// When the user never set an encryption passphrase the stored escrow key is
// already plaintext and is returned unchanged, whatever the passphrase
// argument holds. Otherwise a non-empty passphrase is required to unlock it.
//
// Called fresh on every operation that touches a user's private keys; the
// plaintext escrow key must not outlive the request.
func ResolveEscrowKey(u *model.User, passphrase string) (string, error) {
	if !u.HasEncryptionKey {
		return u.EscrowKey, nil
	}
	if passphrase == "" {
		return "", errs.ErrEncryptionKeyNotProvided
	}
	return envelope.Decrypt(u.EscrowKey, passphrase)
}
