// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/gomintco/gomint-api/internal/hedera"
)

// Reserved alias tokens substituted at deal-signing time. Account aliases must
// never collide with these.
const (
	RolePayer    = "payer"
	RoleReceiver = "receiver"
)

// IsReservedAlias reports whether the alias is one of the reserved role tokens.
func IsReservedAlias(alias string) bool {
	return alias == RolePayer || alias == RoleReceiver
}

// Tokens collects issued access/refresh tokens (refresh optional).
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics)
}

// User is a custodial identity. EscrowKey is the per-user master secret that
// encrypts all of the user's private keys; when HasEncryptionKey is true the
// escrow key itself is stored encrypted under a user-chosen passphrase.
type User struct {
	ID               uuid.UUID // PK
	Username         string    // unique
	PwdHash          []byte    // Argon2id(password, SaltAuth)
	SaltAuth         []byte    // per-user auth salt
	EscrowKey        string    // master secret, possibly envelope-encrypted
	HasEncryptionKey bool      // true once a passphrase encrypts EscrowKey
	Network          hedera.Network
	CreatedAt        time.Time
}

// KeyPair stores the public key in cleartext and the private key only in
// encrypted form. The encrypted private key is only ever decryptable with the
// escrow key of the owning user, never with a transaction-specific secret.
// Immutable once persisted.
type KeyPair struct {
	ID                  uuid.UUID
	UserID              uuid.UUID     // owning user
	AccountID           uuid.NullUUID // account this key authorizes, if any
	Type                hedera.KeyType
	PublicKey           string // hex, cleartext
	EncryptedPrivateKey string // envelope ciphertext under the owner's escrow key
	CreatedAt           time.Time
}

// Account is a ledger account identity owned by one user. Alias defaults to
// the canonical ledger ID when unset and is unique per owning user.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	LedgerID  string // canonical "shard.realm.num"
	Alias     string
	CreatedAt time.Time

	// Hydrated relations, populated by batch lookups so downstream signing
	// needs no additional round trips.
	Keys  []KeyPair
	Owner *User
}

// Deal is an immutable, content-addressed record of a proposed multi-party
// transfer, keyed by the hash of its canonicalized JSON body.
type Deal struct {
	ID        uuid.UUID
	Hash      string // hex digest of the canonical body, the deal's public identity
	Body      DealBody
	CreatedAt time.Time
}
