package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/gomintco/gomint-api/internal/model"
)

// AccountRepository provides lookups over ledger accounts and their aliases.
type AccountRepository interface {
	// Create inserts a new account row. A duplicate (user, alias) pair is
	// reported as ErrDuplicateEntity.
	Create(ctx context.Context, a *model.Account) error

	// GetByLedgerID loads an account by canonical ledger ID, regardless of
	// owner. Ownership is deliberately not checked on this path: any user may
	// reference a public account as a counterparty.
	GetByLedgerID(ctx context.Context, ledgerID string) (*model.Account, error)

	// GetByAlias loads the account owned by userID under the given alias.
	GetByAlias(ctx context.Context, userID uuid.UUID, alias string) (*model.Account, error)

	// GetByPublicKeyFragment finds the first account under userID with an
	// authorizing public key containing the fragment (case-sensitive
	// substring). Multiple matches are not disambiguated.
	GetByPublicKeyFragment(ctx context.Context, userID uuid.UUID, fragment string) (*model.Account, error)

	// ListByLedgerIDs bulk-loads accounts by canonical ID, hydrated with
	// their authorizing key pairs and owning users.
	ListByLedgerIDs(ctx context.Context, ledgerIDs []string) ([]model.Account, error)

	// UpdateAlias changes the alias of the user's account. A duplicate alias
	// is reported as ErrDuplicateEntity.
	UpdateAlias(ctx context.Context, userID uuid.UUID, ledgerID, alias string) error
}

// KeyPairRepository stores generated key pairs.
type KeyPairRepository interface {
	// Create persists a pending key pair.
	Create(ctx context.Context, kp *model.KeyPair) error
	// ListByUser returns all key pairs owned by the user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.KeyPair, error)
}

// DealRepository stores content-addressed deals.
type DealRepository interface {
	// Create inserts a deal. A duplicate content hash is reported as
	// ErrDuplicateEntity.
	Create(ctx context.Context, d *model.Deal) error
	// GetByHash loads a deal by its content hash.
	GetByHash(ctx context.Context, hash string) (*model.Deal, error)
}
