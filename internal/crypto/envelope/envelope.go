// Package envelope implements symmetric encryption of opaque secret strings
// under a caller-supplied passphrase. It is the cipher behind escrow keys and
// stored private keys.
//
// The wire format is hex(iv) ":" hex(ciphertext) with AES-256-CBC and a key
// derived as SHA-256(passphrase). The derivation carries no salt beyond the
// hash itself, a known weakness kept for compatibility with existing stored
// ciphertexts.
package envelope

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gomintco/gomint-api/internal/errs"
)

// deriveKey turns a passphrase into a fixed-length AES-256 key.
func deriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

// Encrypt seals plaintext under the passphrase with a fresh random IV, so
// repeated encryptions of the same plaintext yield different ciphertexts.
func Encrypt(plaintext, passphrase string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("%w: empty passphrase", errs.ErrDecryptionFailure)
	}
	block, err := aes.NewCipher(deriveKey(passphrase))
	if err != nil {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}
	padded := pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt opens a ciphertext produced by Encrypt. It fails with
// ErrDecryptionFailure when the passphrase is empty, the ciphertext is
// malformed, or the derived key does not match (surfaced as a padding error).
func Decrypt(ciphertext, passphrase string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("%w: empty passphrase", errs.ErrDecryptionFailure)
	}
	parts := strings.SplitN(ciphertext, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: malformed ciphertext", errs.ErrDecryptionFailure)
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: malformed iv", errs.ErrDecryptionFailure)
	}
	ct, err := hex.DecodeString(parts[1])
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: malformed ciphertext body", errs.ErrDecryptionFailure)
	}
	block, err := aes.NewCipher(deriveKey(passphrase))
	if err != nil {
		return "", err
	}
	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)
	unpadded, err := unpad(pt, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrDecryptionFailure, err)
	}
	return string(unpadded), nil
}

// pad applies PKCS#7 padding.
func pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

// unpad strips PKCS#7 padding, rejecting inconsistent padding bytes.
func unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(b))
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", n)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return b[:len(b)-n], nil
}
