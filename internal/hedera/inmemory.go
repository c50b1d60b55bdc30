package hedera

import (
	"context"
	"fmt"
	"sync"

	"github.com/gomintco/gomint-api/internal/errs"
)

// InMemoryLedger is a concurrency-safe in-process ledger used for unit tests
// and local development. It verifies signatures against registered account
// keys, assigns sequential entity numbers and produces deterministic receipts.
type InMemoryLedger struct {
	mu       sync.Mutex
	network  Network
	node     EntityID
	nextNum  uint64
	accounts map[EntityID][]PublicKey // account -> authorizing keys
	tokens   map[EntityID]TokenCreateOp
	serials  map[EntityID]int64 // token -> last minted serial
	seenTx   map[string]struct{}
}

// NewInMemoryLedger creates an empty in-process ledger for the network.
func NewInMemoryLedger(network Network) *InMemoryLedger {
	return &InMemoryLedger{
		network:  network,
		node:     EntityID{Num: 3},
		nextNum:  1000,
		accounts: make(map[EntityID][]PublicKey),
		tokens:   make(map[EntityID]TokenCreateOp),
		serials:  make(map[EntityID]int64),
		seenTx:   make(map[string]struct{}),
	}
}

// RegisterAccount seeds an account with its authorizing keys, as if it had
// been created on-ledger earlier.
func (l *InMemoryLedger) RegisterAccount(id EntityID, keys ...PublicKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[id] = append(l.accounts[id], keys...)
}

// ClientFor returns a client bound to the given fee payer.
func (l *InMemoryLedger) ClientFor(payer EntityID) Client {
	return &inMemoryClient{ledger: l, payer: payer}
}

type inMemoryClient struct {
	ledger *InMemoryLedger
	payer  EntityID
}

func (c *inMemoryClient) Network() Network { return c.ledger.network }
func (c *inMemoryClient) Payer() EntityID  { return c.payer }
func (c *inMemoryClient) Node() EntityID   { return c.ledger.node }

func (c *inMemoryClient) Submit(_ context.Context, tx *FrozenTransaction) (Handle, error) {
	receipt, err := c.ledger.apply(tx)
	return &inMemoryHandle{receipt: receipt, err: err}, nil
}

type inMemoryHandle struct {
	receipt Receipt
	err     error
}

func (h *inMemoryHandle) Receipt(_ context.Context) (Receipt, error) {
	return h.receipt, h.err
}

// apply validates the transaction and mutates ledger state.
func (l *InMemoryLedger) apply(tx *FrozenTransaction) (Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.seenTx[tx.TransactionID()]; dup {
		return Receipt{}, fmt.Errorf("%w: %s", errs.ErrSubmissionFailed, StatusDuplicateTx)
	}
	l.seenTx[tx.TransactionID()] = struct{}{}

	if err := l.checkSigners(tx); err != nil {
		return Receipt{}, err
	}

	switch op := tx.Operation().(type) {
	case CryptoCreateOp:
		id := l.assign()
		key, err := ParsePublicKey(op.Key.Type, op.Key.Key)
		if err != nil {
			return Receipt{}, fmt.Errorf("%w: %v", errs.ErrSubmissionFailed, err)
		}
		l.accounts[id] = []PublicKey{key}
		return Receipt{Status: StatusSuccess, EntityID: &id}, nil
	case TokenCreateOp:
		id := l.assign()
		l.tokens[id] = op
		return Receipt{Status: StatusSuccess, EntityID: &id}, nil
	case TopicCreateOp:
		id := l.assign()
		return Receipt{Status: StatusSuccess, EntityID: &id}, nil
	case TokenMintOp:
		serials := make([]int64, 0, len(op.Metadata))
		for range op.Metadata {
			l.serials[op.Token]++
			serials = append(serials, l.serials[op.Token])
		}
		return Receipt{Status: StatusSuccess, Serials: serials}, nil
	case TokenAssociateOp, TransferOp:
		return Receipt{Status: StatusSuccess}, nil
	default:
		return Receipt{}, fmt.Errorf("%w: unsupported operation", errs.ErrSubmissionFailed)
	}
}

// checkSigners verifies that every account known to the ledger that must
// authorize the transaction has a valid signature over the body bytes.
func (l *InMemoryLedger) checkSigners(tx *FrozenTransaction) error {
	required := requiredSignerAccounts(tx)
	for _, account := range required {
		keys, known := l.accounts[account]
		if !known {
			continue
		}
		ok := false
		for _, key := range keys {
			if tx.VerifySignature(key) {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: %s (account %s)", errs.ErrSubmissionFailed, StatusInvalidSignature, account)
		}
	}
	return nil
}

// requiredSignerAccounts lists the accounts whose authorization the ledger
// checks: the debited side of each leg, NFT senders, associating accounts,
// token treasuries.
func requiredSignerAccounts(tx *FrozenTransaction) []EntityID {
	var out []EntityID
	switch op := tx.Operation().(type) {
	case TransferOp:
		for _, aa := range op.Hbar {
			if aa.Amount < 0 {
				out = append(out, aa.Account)
			}
		}
		for _, tt := range op.Tokens {
			if tt.Amount < 0 {
				out = append(out, tt.Account)
			}
		}
		for _, nt := range op.Nfts {
			out = append(out, nt.Sender)
		}
	case TokenAssociateOp:
		out = append(out, op.Account)
	case TokenCreateOp:
		if !op.Treasury.IsZero() {
			out = append(out, op.Treasury)
		}
	}
	return out
}

func (l *InMemoryLedger) assign() EntityID {
	l.nextNum++
	return EntityID{Num: l.nextNum}
}
