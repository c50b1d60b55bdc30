// Package hedera contains ledger-native primitives: entity identifiers,
// signing keys, the freeze/sign/execute transaction protocol and the client
// boundary used to submit transactions to a network.
package hedera

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Network selects the target ledger network.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// ParseNetwork validates a network selector string.
func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case Mainnet, Testnet:
		return Network(s), nil
	default:
		return "", fmt.Errorf("unknown network %q", s)
	}
}

// EntityID is a canonical ledger-assigned identifier of an account, token or
// topic, rendered as "shard.realm.num".
type EntityID struct {
	Shard uint64
	Realm uint64
	Num   uint64
}

// ParseEntityID parses a "shard.realm.num" string.
func ParseEntityID(s string) (EntityID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return EntityID{}, fmt.Errorf("malformed entity id %q", s)
	}
	var nums [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return EntityID{}, fmt.Errorf("malformed entity id %q: %w", s, err)
		}
		nums[i] = n
	}
	return EntityID{Shard: nums[0], Realm: nums[1], Num: nums[2]}, nil
}

// IsEntityID reports whether s is already in canonical "shard.realm.num" shape.
func IsEntityID(s string) bool {
	_, err := ParseEntityID(s)
	return err == nil
}

func (id EntityID) String() string {
	return fmt.Sprintf("%d.%d.%d", id.Shard, id.Realm, id.Num)
}

// IsZero reports whether the ID is the zero value (no entity bound).
func (id EntityID) IsZero() bool {
	return id == EntityID{}
}

// MarshalJSON renders the canonical "shard.realm.num" form.
func (id EntityID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts the canonical "shard.realm.num" form.
func (id *EntityID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseEntityID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
