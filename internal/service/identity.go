package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
	"github.com/gomintco/gomint-api/internal/repository"
)

// IdentityResolver maps user-chosen aliases to canonical ledger account
// identities and finds accounts by identity or by public key. It never
// mutates state.
type IdentityResolver struct {
	accounts repository.AccountRepository
}

// NewIdentityResolver constructs an identity resolver.
func NewIdentityResolver(accounts repository.AccountRepository) *IdentityResolver {
	return &IdentityResolver{accounts: accounts}
}

// ResolveAlias translates an alias into an account row. If the alias is
// already in canonical ledger-ID shape the lookup goes by canonical ID
// directly, without requiring ownership by userID: any user may reference a
// public account as a counterparty. Otherwise the alias is looked up within
// the user's own accounts.
func (r *IdentityResolver) ResolveAlias(ctx context.Context, userID uuid.UUID, alias string) (*model.Account, error) {
	if hedera.IsEntityID(alias) {
		return r.accounts.GetByLedgerID(ctx, alias)
	}
	return r.accounts.GetByAlias(ctx, userID, alias)
}

// ResolveAliasToID is a convenience wrapper returning only the canonical ID.
func (r *IdentityResolver) ResolveAliasToID(ctx context.Context, userID uuid.UUID, alias string) (string, error) {
	a, err := r.ResolveAlias(ctx, userID, alias)
	if err != nil {
		return "", err
	}
	return a.LedgerID, nil
}

// ResolveByPublicKey finds the user's account whose authorizing public keys
// contain the given fragment. The match is a case-sensitive substring and the
// first database match wins; key-prefix collisions are not disambiguated.
func (r *IdentityResolver) ResolveByPublicKey(ctx context.Context, userID uuid.UUID, fragment string) (*model.Account, error) {
	return r.accounts.GetByPublicKeyFragment(ctx, userID, fragment)
}

// ResolveBatch bulk-loads accounts by canonical ID, hydrated with their key
// pairs and owning users so signing needs no further round trips.
func (r *IdentityResolver) ResolveBatch(ctx context.Context, ledgerIDs []string) ([]model.Account, error) {
	return r.accounts.ListByLedgerIDs(ctx, ledgerIDs)
}
