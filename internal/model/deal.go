package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// TransferLeg is the closed set of deal transfer legs. Account fields carry
// user-facing shorthand: canonical IDs, per-user aliases, or the reserved
// "payer"/"receiver" role tokens resolved at signing time.
type TransferLeg interface {
	legKind() string
}

// HbarLeg is a signed native-currency balance change.
type HbarLeg struct {
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

func (HbarLeg) legKind() string { return "hbar" }

// TokenLeg is a signed fungible-token balance change.
type TokenLeg struct {
	Token   string `json:"token"`
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

func (TokenLeg) legKind() string { return "token" }

// NftLeg moves one serial of a non-fungible token. Serial 0 means unset; a
// concrete serial is then auto-selected from the sender's holdings at
// signing time.
type NftLeg struct {
	Token    string `json:"token"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Serial   int64  `json:"serial,omitempty"`
}

func (NftLeg) legKind() string { return "nft" }

// DealBody is the canonicalized content of a deal. Its JSON serialization is
// the input to content addressing: identical content yields identical hashes.
type DealBody struct {
	Transfers []TransferLeg
}

type taggedLeg struct {
	Kind string          `json:"kind"`
	Leg  json.RawMessage `json:"leg"`
}

// MarshalJSON emits legs with an explicit kind tag in declaration order, so
// the serialization is a pure function of the content.
func (b DealBody) MarshalJSON() ([]byte, error) {
	legs := make([]taggedLeg, 0, len(b.Transfers))
	for _, leg := range b.Transfers {
		raw, err := json.Marshal(leg)
		if err != nil {
			return nil, err
		}
		legs = append(legs, taggedLeg{Kind: leg.legKind(), Leg: raw})
	}
	return json.Marshal(struct {
		Transfers []taggedLeg `json:"transfers"`
	}{Transfers: legs})
}

// UnmarshalJSON restores the tagged legs into their concrete variants.
func (b *DealBody) UnmarshalJSON(data []byte) error {
	var wire struct {
		Transfers []taggedLeg `json:"transfers"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	b.Transfers = make([]TransferLeg, 0, len(wire.Transfers))
	for _, tl := range wire.Transfers {
		switch tl.Kind {
		case "hbar":
			var leg HbarLeg
			if err := json.Unmarshal(tl.Leg, &leg); err != nil {
				return err
			}
			b.Transfers = append(b.Transfers, leg)
		case "token":
			var leg TokenLeg
			if err := json.Unmarshal(tl.Leg, &leg); err != nil {
				return err
			}
			b.Transfers = append(b.Transfers, leg)
		case "nft":
			var leg NftLeg
			if err := json.Unmarshal(tl.Leg, &leg); err != nil {
				return err
			}
			b.Transfers = append(b.Transfers, leg)
		default:
			return fmt.Errorf("unknown transfer leg kind %q", tl.Kind)
		}
	}
	return nil
}

// Validate checks the deal content before any hash is computed: legs must be
// present, reference a party, and sum to zero per asset. NFT legs must move
// between distinct parties.
func (b DealBody) Validate() error {
	if len(b.Transfers) == 0 {
		return fmt.Errorf("deal has no transfer legs")
	}
	var hbarSum int64
	tokenSums := make(map[string]int64)
	for i, leg := range b.Transfers {
		switch l := leg.(type) {
		case HbarLeg:
			if l.Account == "" {
				return fmt.Errorf("leg[%d]: empty account", i)
			}
			hbarSum += l.Amount
		case TokenLeg:
			if l.Account == "" || l.Token == "" {
				return fmt.Errorf("leg[%d]: empty account/token", i)
			}
			tokenSums[l.Token] += l.Amount
		case NftLeg:
			if l.Sender == "" || l.Receiver == "" || l.Token == "" {
				return fmt.Errorf("leg[%d]: empty sender/receiver/token", i)
			}
			if l.Sender == l.Receiver {
				return fmt.Errorf("leg[%d]: nft sender and receiver are the same party", i)
			}
			if l.Serial < 0 {
				return fmt.Errorf("leg[%d]: negative serial", i)
			}
		}
	}
	if hbarSum != 0 {
		return fmt.Errorf("hbar legs sum to %d, want 0", hbarSum)
	}
	for token, sum := range tokenSums {
		if sum != 0 {
			return fmt.Errorf("token %s legs sum to %d, want 0", token, sum)
		}
	}
	return nil
}

// ContentHash computes the deal's identity: the hex SHA-256 of the canonical
// JSON body. Two deals with identical content collapse to the same hash.
func (b DealBody) ContentHash() (string, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
