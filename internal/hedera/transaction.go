package hedera

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gomintco/gomint-api/internal/errs"
)

// KeySpec is the serializable form of a public key attached to a transaction
// body (account keys, token admin/supply keys, topic keys).
type KeySpec struct {
	Type KeyType `json:"type"`
	Key  string  `json:"key"`
}

// Spec returns the serializable form of the public key.
func (p PublicKey) Spec() KeySpec {
	return KeySpec{Type: p.typ, Key: p.String()}
}

// Operation is the closed set of transaction payloads this service assembles.
type Operation interface {
	kind() string
}

// AccountAmount is a signed native-currency balance change for one account.
type AccountAmount struct {
	Account EntityID `json:"account"`
	Amount  int64    `json:"amount"`
}

// TokenTransfer is a signed fungible-token balance change for one account.
type TokenTransfer struct {
	Token   EntityID `json:"token"`
	Account EntityID `json:"account"`
	Amount  int64    `json:"amount"`
}

// NftTransfer moves one serial of a non-fungible token between two accounts.
type NftTransfer struct {
	Token    EntityID `json:"token"`
	Serial   int64    `json:"serial"`
	Sender   EntityID `json:"sender"`
	Receiver EntityID `json:"receiver"`
}

// TransferOp carries the legs of a multi-party transfer.
type TransferOp struct {
	Hbar   []AccountAmount `json:"hbar,omitempty"`
	Tokens []TokenTransfer `json:"tokens,omitempty"`
	Nfts   []NftTransfer   `json:"nfts,omitempty"`
}

func (TransferOp) kind() string { return "transfer" }

// CryptoCreateOp creates a new ledger account controlled by Key.
type CryptoCreateOp struct {
	Key            KeySpec `json:"key"`
	InitialBalance int64   `json:"initial_balance"`
}

func (CryptoCreateOp) kind() string { return "crypto_create" }

// TokenCreateOp creates a fungible or non-fungible token class.
type TokenCreateOp struct {
	Name          string      `json:"name"`
	Symbol        string      `json:"symbol"`
	Decimals      uint32      `json:"decimals"`
	InitialSupply uint64      `json:"initial_supply"`
	NonFungible   bool        `json:"non_fungible"`
	Treasury      EntityID    `json:"treasury"`
	AdminKey      *KeySpec    `json:"admin_key,omitempty"`
	SupplyKey     *KeySpec    `json:"supply_key,omitempty"`
	CustomFees    []CustomFee `json:"custom_fees,omitempty"`
}

func (TokenCreateOp) kind() string { return "token_create" }

// TokenMintOp mints fungible supply or new NFT serials.
type TokenMintOp struct {
	Token    EntityID `json:"token"`
	Amount   uint64   `json:"amount,omitempty"`
	Metadata []string `json:"metadata,omitempty"`
}

func (TokenMintOp) kind() string { return "token_mint" }

// TokenAssociateOp opts an account into holding the listed tokens.
type TokenAssociateOp struct {
	Account EntityID   `json:"account"`
	Tokens  []EntityID `json:"tokens"`
}

func (TokenAssociateOp) kind() string { return "token_associate" }

// TopicCreateOp creates a consensus topic.
type TopicCreateOp struct {
	Memo      string   `json:"memo"`
	AdminKey  *KeySpec `json:"admin_key,omitempty"`
	SubmitKey *KeySpec `json:"submit_key,omitempty"`
}

func (TopicCreateOp) kind() string { return "topic_create" }

// CustomFee is the closed set of fee schedules attachable to a token.
type CustomFee interface {
	feeKind() string
}

// FixedFee charges a flat amount, in native currency or in Token when set.
type FixedFee struct {
	Amount    int64     `json:"amount"`
	Token     *EntityID `json:"token,omitempty"`
	Collector EntityID  `json:"collector"`
}

func (FixedFee) feeKind() string { return "fixed" }

// MarshalJSON tags the variant so fee schedules stay distinguishable in
// serialized bodies.
func (f FixedFee) MarshalJSON() ([]byte, error) {
	type plain FixedFee
	return json.Marshal(struct {
		FeeType string `json:"fee_type"`
		plain
	}{FeeType: f.feeKind(), plain: plain(f)})
}

// FractionalFee charges a fraction of the transferred amount, clamped to
// [Min, Max] when those are set.
type FractionalFee struct {
	Numerator   int64    `json:"numerator"`
	Denominator int64    `json:"denominator"`
	Min         int64    `json:"min,omitempty"`
	Max         int64    `json:"max,omitempty"`
	Collector   EntityID `json:"collector"`
}

func (FractionalFee) feeKind() string { return "fractional" }

func (f FractionalFee) MarshalJSON() ([]byte, error) {
	type plain FractionalFee
	return json.Marshal(struct {
		FeeType string `json:"fee_type"`
		plain
	}{FeeType: f.feeKind(), plain: plain(f)})
}

// RoyaltyFee charges a fraction of the fungible value exchanged for an NFT,
// falling back to a fixed amount when no value is exchanged.
type RoyaltyFee struct {
	Numerator      int64    `json:"numerator"`
	Denominator    int64    `json:"denominator"`
	FallbackAmount int64    `json:"fallback_amount,omitempty"`
	Collector      EntityID `json:"collector"`
}

func (RoyaltyFee) feeKind() string { return "royalty" }

func (f RoyaltyFee) MarshalJSON() ([]byte, error) {
	type plain RoyaltyFee
	return json.Marshal(struct {
		FeeType string `json:"fee_type"`
		plain
	}{FeeType: f.feeKind(), plain: plain(f)})
}

// txBody is the frozen, immutable content that gets signed.
type txBody struct {
	TransactionID string    `json:"transaction_id"`
	Node          EntityID  `json:"node"`
	Payer         EntityID  `json:"payer"`
	Memo          string    `json:"memo,omitempty"`
	MaxFee        int64     `json:"max_fee,omitempty"`
	Kind          string    `json:"kind"`
	Op            Operation `json:"op"`
}

// Signature is one additive signature over the frozen body bytes.
type Signature struct {
	Type      KeyType `json:"type"`
	PublicKey string  `json:"public_key"`
	Signature []byte  `json:"signature"`
}

// FrozenTransaction is a transaction bound to a payer, node and transaction
// ID. Its parameters are immutable; only signatures may be added. Signatures
// are additive and order-free, so Sign is safe to call concurrently.
type FrozenTransaction struct {
	mu        sync.Mutex
	frozen    bool
	body      txBody
	bodyBytes []byte
	sigs      map[string]Signature
}

func freeze(op Operation, memo string, maxFee int64, payer, node EntityID) (*FrozenTransaction, error) {
	if payer.IsZero() {
		return nil, errs.ErrNoPayerID
	}
	now := time.Now()
	body := txBody{
		TransactionID: fmt.Sprintf("%s@%d.%09d", payer, now.Unix(), now.Nanosecond()),
		Node:          node,
		Payer:         payer,
		Memo:          memo,
		MaxFee:        maxFee,
		Kind:          op.kind(),
		Op:            op,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("serialize transaction body: %w", err)
	}
	return &FrozenTransaction{
		frozen:    true,
		body:      body,
		bodyBytes: raw,
		sigs:      make(map[string]Signature),
	}, nil
}

// TransactionID returns the identifier bound at freeze time.
func (f *FrozenTransaction) TransactionID() string { return f.body.TransactionID }

// Payer returns the fee-payer identity bound at freeze time.
func (f *FrozenTransaction) Payer() EntityID { return f.body.Payer }

// Operation returns the frozen payload.
func (f *FrozenTransaction) Operation() Operation { return f.body.Op }

// BodyBytes returns the serialized body that signatures cover.
func (f *FrozenTransaction) BodyBytes() []byte { return f.bodyBytes }

// Sign applies one signature. Re-signing with the same key replaces the
// existing signature for that public key, so repeated application is
// idempotent with respect to the final signature set.
func (f *FrozenTransaction) Sign(key PrivateKey) error {
	if f == nil || !f.frozen {
		return errs.ErrNotFrozen
	}
	pub := key.PublicKey()
	sig := Signature{Type: key.Type(), PublicKey: pub.String(), Signature: key.Sign(f.bodyBytes)}
	f.mu.Lock()
	f.sigs[sig.PublicKey] = sig
	f.mu.Unlock()
	return nil
}

// SignAll applies every key, fanning out since signatures are independent.
func (f *FrozenTransaction) SignAll(keys []PrivateKey) error {
	if f == nil || !f.frozen {
		return errs.ErrNotFrozen
	}
	var g errgroup.Group
	for _, key := range keys {
		g.Go(func() error { return f.Sign(key) })
	}
	return g.Wait()
}

// Signatures returns the collected signatures ordered by public key.
func (f *FrozenTransaction) Signatures() []Signature {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Signature, 0, len(f.sigs))
	for _, s := range f.sigs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublicKey < out[j].PublicKey })
	return out
}

// signedEnvelope is the wire form of a frozen transaction plus signatures.
type signedEnvelope struct {
	Body       json.RawMessage `json:"body"`
	Signatures []Signature     `json:"signatures"`
}

// Bytes serializes the frozen transaction and its current signature set,
// suitable for handing to a counterparty for further signing or submission.
func (f *FrozenTransaction) Bytes() ([]byte, error) {
	if f == nil || !f.frozen {
		return nil, errs.ErrNotFrozen
	}
	return json.Marshal(signedEnvelope{Body: f.bodyBytes, Signatures: f.Signatures()})
}

// Execute submits the frozen, signed transaction through the client.
func (f *FrozenTransaction) Execute(ctx context.Context, c Client) (Handle, error) {
	if f == nil || !f.frozen {
		return nil, errs.ErrNotFrozen
	}
	return c.Submit(ctx, f)
}

// VerifySignature reports whether the transaction carries a valid signature
// by the given public key.
func (f *FrozenTransaction) VerifySignature(pub PublicKey) bool {
	f.mu.Lock()
	sig, ok := f.sigs[pub.String()]
	f.mu.Unlock()
	if !ok {
		return false
	}
	return pub.Verify(f.bodyBytes, sig.Signature)
}
