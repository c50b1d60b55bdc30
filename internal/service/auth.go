package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/gomintco/gomint-api/internal/crypto"
	"github.com/gomintco/gomint-api/internal/crypto/envelope"
	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/limiter"
	"github.com/gomintco/gomint-api/internal/model"
	"github.com/gomintco/gomint-api/internal/repository"
)

// AuthService defines authentication and escrow-key lifecycle operations.
type AuthService interface {
	// Register creates a new user with a freshly generated escrow key.
	Register(ctx context.Context, username, password string, network hedera.Network) (userID string, err error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password, ip string) (tokens model.Tokens, user model.User, err error)
	// SetEncryptionKey encrypts the user's escrow key in place under the
	// supplied passphrase.
	SetEncryptionKey(ctx context.Context, userID uuid.UUID, passphrase string) error
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// Register creates a new user record. The escrow key is randomly generated
// here, at creation time, and stored in plaintext until the user opts into
// passphrase encryption via SetEncryptionKey.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string, network hedera.Network) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: empty username/password", errs.ErrValidation)
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	saltAuth, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return "", err
	}
	escrowKey, err := pkgcrypto.NewEscrowKey()
	if err != nil {
		return "", err
	}
	pwdHash := pkgcrypto.HashPassword([]byte(password), saltAuth)

	u := &model.User{
		ID:               uid,
		Username:         username,
		PwdHash:          pwdHash,
		SaltAuth:         saltAuth,
		EscrowKey:        escrowKey,
		HasEncryptionKey: false,
		Network:          network,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// LoginWithIP authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// hide user existence on wrong password or lookup failure
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, username, ipHash)

	access, exp, err := s.issueAccessToken(u.ID)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// SetEncryptionKey re-encrypts the user's escrow key in place under the
// supplied passphrase. A user who already has an encryption key cannot set
// another one through this path: re-encrypting would require the old
// passphrase to decrypt first.
func (s *AuthServiceImpl) SetEncryptionKey(ctx context.Context, userID uuid.UUID, passphrase string) error {
	if userID == uuid.Nil || passphrase == "" {
		return fmt.Errorf("%w: userID/passphrase", errs.ErrValidation)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.HasEncryptionKey {
		return fmt.Errorf("%w: encryption key already set", errs.ErrValidation)
	}
	enc, err := envelope.Encrypt(u.EscrowKey, passphrase)
	if err != nil {
		return err
	}
	return s.users.SetEscrowKey(ctx, userID, enc, true)
}
