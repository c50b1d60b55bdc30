package hedera

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/gomintco/gomint-api/internal/errs"
)

// KeyType declares the signature scheme of a key pair.
type KeyType string

const (
	KeyTypeED25519 KeyType = "ED25519"
	KeyTypeECDSA   KeyType = "ECDSA_SECP256K1"
)

// ParseKeyType validates a declared key type string.
func ParseKeyType(s string) (KeyType, error) {
	switch KeyType(s) {
	case KeyTypeED25519, KeyTypeECDSA:
		return KeyType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidKeyType, s)
	}
}

// PrivateKey is a signing key of one of the supported schemes.
type PrivateKey struct {
	typ KeyType
	ed  ed25519.PrivateKey
	ec  *secp256k1.PrivateKey
}

// PublicKey is the verifying counterpart of a PrivateKey.
type PublicKey struct {
	typ KeyType
	ed  ed25519.PublicKey
	ec  *secp256k1.PublicKey
}

// GeneratePrivateKey creates a fresh key pair of the requested type.
func GeneratePrivateKey(typ KeyType) (PrivateKey, error) {
	switch typ {
	case KeyTypeED25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return PrivateKey{}, err
		}
		return PrivateKey{typ: typ, ed: priv}, nil
	case KeyTypeECDSA:
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return PrivateKey{}, err
		}
		return PrivateKey{typ: typ, ec: priv}, nil
	default:
		return PrivateKey{}, fmt.Errorf("%w: %q", errs.ErrInvalidKeyType, typ)
	}
}

// ParsePrivateKey decodes a hex-encoded private key of the declared type.
// ED25519 keys are the 32-byte seed; ECDSA keys the 32-byte scalar.
func ParsePrivateKey(typ KeyType, s string) (PrivateKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("private key not hex: %w", err)
	}
	switch typ {
	case KeyTypeED25519:
		if len(raw) != ed25519.SeedSize {
			return PrivateKey{}, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(raw))
		}
		return PrivateKey{typ: typ, ed: ed25519.NewKeyFromSeed(raw)}, nil
	case KeyTypeECDSA:
		if len(raw) != 32 {
			return PrivateKey{}, fmt.Errorf("secp256k1 key must be 32 bytes, got %d", len(raw))
		}
		return PrivateKey{typ: typ, ec: secp256k1.PrivKeyFromBytes(raw)}, nil
	default:
		return PrivateKey{}, fmt.Errorf("%w: %q", errs.ErrInvalidKeyType, typ)
	}
}

// Type returns the key's signature scheme.
func (k PrivateKey) Type() KeyType { return k.typ }

// String returns the ledger-native hex encoding of the private key material.
func (k PrivateKey) String() string {
	switch k.typ {
	case KeyTypeED25519:
		return hex.EncodeToString(k.ed.Seed())
	case KeyTypeECDSA:
		return hex.EncodeToString(k.ec.Serialize())
	default:
		return ""
	}
}

// PublicKey derives the verifying key.
func (k PrivateKey) PublicKey() PublicKey {
	switch k.typ {
	case KeyTypeED25519:
		return PublicKey{typ: k.typ, ed: k.ed.Public().(ed25519.PublicKey)}
	case KeyTypeECDSA:
		return PublicKey{typ: k.typ, ec: k.ec.PubKey()}
	default:
		return PublicKey{}
	}
}

// Sign produces a signature over msg. ED25519 signs the message directly;
// ECDSA signs the SHA-256 digest and serializes in DER form.
func (k PrivateKey) Sign(msg []byte) []byte {
	switch k.typ {
	case KeyTypeED25519:
		return ed25519.Sign(k.ed, msg)
	case KeyTypeECDSA:
		digest := sha256.Sum256(msg)
		return secpecdsa.Sign(k.ec, digest[:]).Serialize()
	default:
		return nil
	}
}

// ParsePublicKey decodes a hex-encoded public key of the declared type.
func ParsePublicKey(typ KeyType, s string) (PublicKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("public key not hex: %w", err)
	}
	switch typ {
	case KeyTypeED25519:
		if len(raw) != ed25519.PublicKeySize {
			return PublicKey{}, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
		}
		return PublicKey{typ: typ, ed: ed25519.PublicKey(raw)}, nil
	case KeyTypeECDSA:
		pub, err := secp256k1.ParsePubKey(raw)
		if err != nil {
			return PublicKey{}, fmt.Errorf("parse secp256k1 public key: %w", err)
		}
		return PublicKey{typ: typ, ec: pub}, nil
	default:
		return PublicKey{}, fmt.Errorf("%w: %q", errs.ErrInvalidKeyType, typ)
	}
}

// Type returns the key's signature scheme.
func (p PublicKey) Type() KeyType { return p.typ }

// String returns the ledger-native hex encoding of the public key
// (raw bytes for ED25519, compressed point for ECDSA).
func (p PublicKey) String() string {
	switch p.typ {
	case KeyTypeED25519:
		return hex.EncodeToString(p.ed)
	case KeyTypeECDSA:
		return hex.EncodeToString(p.ec.SerializeCompressed())
	default:
		return ""
	}
}

// Verify reports whether sig is a valid signature of msg under this key.
func (p PublicKey) Verify(msg, sig []byte) bool {
	switch p.typ {
	case KeyTypeED25519:
		return ed25519.Verify(p.ed, msg, sig)
	case KeyTypeECDSA:
		parsed, err := secpecdsa.ParseDERSignature(sig)
		if err != nil {
			return false
		}
		digest := sha256.Sum256(msg)
		return parsed.Verify(digest[:], p.ec)
	default:
		return false
	}
}
