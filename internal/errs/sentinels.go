// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Core key-management and transaction-assembly sentinels.
var (
	// ErrAccountNotFound indicates an alias/ID/public-key lookup yielded no account.
	// Call sites wrap it with the role that failed (associating, payer, supply-key owner).
	ErrAccountNotFound = errors.New("account not found")

	// ErrEncryptionKeyNotProvided indicates the user's escrow key is encrypted
	// and no passphrase accompanied the request.
	ErrEncryptionKeyNotProvided = errors.New("encryption key not provided")

	// ErrDecryptionFailure indicates the passphrase does not unlock the stored
	// ciphertext, or the ciphertext is malformed.
	ErrDecryptionFailure = errors.New("decryption failure")

	// ErrInvalidKeyType indicates an unsupported signature scheme was requested or stored.
	ErrInvalidKeyType = errors.New("invalid key type")

	// ErrNoPayerID indicates a multi-party transaction has no resolvable fee payer.
	ErrNoPayerID = errors.New("no payer id")

	// ErrNotFrozen indicates signing was attempted before the transaction was frozen.
	ErrNotFrozen = errors.New("transaction not frozen")

	// ErrDuplicateEntity indicates a persistence uniqueness constraint was violated
	// (duplicate alias, duplicate deal hash, duplicate username).
	ErrDuplicateEntity = errors.New("duplicate entity")

	// ErrSubmissionFailed indicates the ledger rejected or failed to execute
	// a submitted transaction.
	ErrSubmissionFailed = errors.New("submission failed")
)

// Edge sentinels shared with the HTTP layer.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrValidation indicates a request failed input validation.
	ErrValidation = errors.New("validation")
)
