// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/gomintco/gomint-api/internal/model"
)

// UserRepository provides CRUD access for users and their escrow keys.
type UserRepository interface {
	// Create inserts a new user. A duplicate username is reported as
	// ErrDuplicateEntity.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// SetEscrowKey replaces the stored escrow key (re-encrypted in place) and
	// records whether it is now passphrase-encrypted.
	SetEscrowKey(ctx context.Context, id uuid.UUID, escrowKey string, hasEncryptionKey bool) error
}
