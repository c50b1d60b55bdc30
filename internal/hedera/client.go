package hedera

import "context"

// Receipt statuses surfaced by the ledger.
const (
	StatusSuccess           = "SUCCESS"
	StatusInvalidSignature  = "INVALID_SIGNATURE"
	StatusDuplicateTx       = "DUPLICATE_TRANSACTION"
	StatusInsufficientFunds = "INSUFFICIENT_PAYER_BALANCE"
)

// Receipt is the deterministic outcome of a submitted transaction.
type Receipt struct {
	Status string
	// EntityID holds the newly assigned canonical ID for account/token/topic
	// creation, nil otherwise.
	EntityID *EntityID
	// Serials holds newly minted NFT serial numbers, when applicable.
	Serials []int64
}

// Handle is an opaque submission handle that yields the final outcome.
type Handle interface {
	// Receipt awaits the transaction outcome. A rejection is returned as an
	// error wrapping ErrSubmissionFailed, not encoded in the Receipt.
	Receipt(ctx context.Context) (Receipt, error)
}

// Client is the opaque RPC boundary to a ledger network, bound to a
// fee-payer identity and a consensus node at construction time.
type Client interface {
	// Network returns the network this client targets.
	Network() Network
	// Payer returns the fee-payer identity the client is bound to.
	Payer() EntityID
	// Node returns the consensus node the client submits to.
	Node() EntityID
	// Submit sends a frozen, signed transaction and returns a handle.
	Submit(ctx context.Context, tx *FrozenTransaction) (Handle, error)
}
