package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
)

// resolveSigners resolves an alias to a fully hydrated account and decrypts
// its authorizing keys with the owner's escrow key. role names the lookup in
// error context (associating account, treasury, supply-key owner, ...).
func resolveSigners(
	ctx context.Context,
	ids *IdentityResolver,
	userID uuid.UUID,
	alias, role, passphrase string,
) (*model.Account, []SignerKey, error) {
	account, err := ids.ResolveAlias(ctx, userID, alias)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %q: %w", role, alias, err)
	}
	hydrated, err := ids.ResolveBatch(ctx, []string{account.LedgerID})
	if err != nil {
		return nil, nil, err
	}
	if len(hydrated) == 0 {
		return nil, nil, fmt.Errorf("%s %q: %w", role, alias, errs.ErrAccountNotFound)
	}
	signers, err := decryptSigners(ctx, hydrated, passphrase)
	if err != nil {
		return nil, nil, err
	}
	return &hydrated[0], signers, nil
}

// resolvePayerOr binds the fee payer: the explicit payer alias when given,
// otherwise the fallback account, else ErrNoPayerID.
func resolvePayerOr(
	ctx context.Context,
	ids *IdentityResolver,
	userID uuid.UUID,
	payerAlias string,
	fallback *model.Account,
) (hedera.EntityID, error) {
	if payerAlias != "" {
		id, err := ids.ResolveAliasToID(ctx, userID, payerAlias)
		if err != nil {
			return hedera.EntityID{}, fmt.Errorf("payer %q: %w", payerAlias, err)
		}
		return hedera.ParseEntityID(id)
	}
	if fallback == nil {
		return hedera.EntityID{}, errs.ErrNoPayerID
	}
	return hedera.ParseEntityID(fallback.LedgerID)
}

// firstPublicKey returns the account's first stored public key.
func firstPublicKey(keys []model.KeyPair) (hedera.PublicKey, error) {
	if len(keys) == 0 {
		return hedera.PublicKey{}, fmt.Errorf("no key pairs on account")
	}
	return hedera.ParsePublicKey(keys[0].Type, keys[0].PublicKey)
}
