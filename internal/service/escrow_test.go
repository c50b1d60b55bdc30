package service

import (
	"errors"
	"testing"

	"github.com/gomintco/gomint-api/internal/crypto/envelope"
	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/model"
)

func TestResolveEscrowKey(t *testing.T) {
	t.Parallel()

	// No encryption key set: stored escrow key is plaintext and the
	// passphrase argument is ignored.
	plain := &model.User{EscrowKey: "plain", HasEncryptionKey: false}
	got, err := ResolveEscrowKey(plain, "")
	if err != nil || got != "plain" {
		t.Fatalf("plaintext escrow: got %q, %v", got, err)
	}
	got, err = ResolveEscrowKey(plain, "ignored")
	if err != nil || got != "plain" {
		t.Fatalf("plaintext escrow with passphrase: got %q, %v", got, err)
	}

	enc, err := envelope.Encrypt("escrow-secret", "pw")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	locked := &model.User{EscrowKey: enc, HasEncryptionKey: true}

	if _, err := ResolveEscrowKey(locked, ""); !errors.Is(err, errs.ErrEncryptionKeyNotProvided) {
		t.Fatalf("want ErrEncryptionKeyNotProvided, got %v", err)
	}
	if _, err := ResolveEscrowKey(locked, "wrong"); !errors.Is(err, errs.ErrDecryptionFailure) {
		t.Fatalf("want ErrDecryptionFailure on wrong passphrase, got %v", err)
	}
	got, err = ResolveEscrowKey(locked, "pw")
	if err != nil || got != "escrow-secret" {
		t.Fatalf("unlock: got %q, %v", got, err)
	}
}
