package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/sync/errgroup"

	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
)

// SignerKey is one decrypted signing key, ready to apply to a frozen
// transaction.
type SignerKey struct {
	Type      hedera.KeyType
	PublicKey string
	Key       hedera.PrivateKey
}

// SignerSet is the outcome of signer derivation: the decrypted keys of
// exactly the accounts that must co-sign, plus an execution client bound to
// the fee-payer identity.
type SignerSet struct {
	Signers []SignerKey
	Payer   hedera.EntityID
	Client  hedera.Client
}

// Keys returns the bare private keys for signature application.
func (s *SignerSet) Keys() []hedera.PrivateKey {
	return signerKeys(s.Signers)
}

// SignerSetBuilder derives, resolves and decrypts the signer set for a
// transfer. It never decrypts a private key belonging to an account that is
// not a required signer, bounding the blast radius of a compromised
// passphrase to the accounts the transaction actually needs.
type SignerSetBuilder struct {
	ids     *IdentityResolver
	clients Clients
}

// NewSignerSetBuilder constructs a signer-set builder.
func NewSignerSetBuilder(ids *IdentityResolver, clients Clients) *SignerSetBuilder {
	return &SignerSetBuilder{ids: ids, clients: clients}
}

// RequiredSigners determines which parties must co-sign: every account whose
// balance change is negative on a native-currency or token leg, and every NFT
// sender. Receive-only participants never sign. The result is deduplicated,
// preserving first-appearance order.
func RequiredSigners(legs []model.TransferLeg) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(party string) {
		if _, ok := seen[party]; ok {
			return
		}
		seen[party] = struct{}{}
		out = append(out, party)
	}
	for _, leg := range legs {
		switch l := leg.(type) {
		case model.HbarLeg:
			if l.Amount < 0 {
				add(l.Account)
			}
		case model.TokenLeg:
			if l.Amount < 0 {
				add(l.Account)
			}
		case model.NftLeg:
			add(l.Sender)
		}
	}
	return out
}

// Build resolves every required signer, decrypts exactly those accounts'
// private keys and binds a client to the fee payer. A multi-party transfer
// may span several distinct escrow-key owners; each is resolved and decrypted
// independently with the single request passphrase.
//
// The fee payer is the explicitly supplied payer alias when present;
// otherwise, if exactly one participant must sign, that participant pays;
// otherwise the build fails with ErrNoPayerID.
func (b *SignerSetBuilder) Build(
	ctx context.Context,
	network hedera.Network,
	userID uuid.UUID,
	legs []model.TransferLeg,
	payerAlias string,
	passphrase string,
) (*SignerSet, error) {
	required := RequiredSigners(legs)
	if len(required) == 0 {
		return nil, fmt.Errorf("no signing participants: %w", errs.ErrNoPayerID)
	}

	// Alias resolution fans out; each failure names the participant.
	ledgerIDs := make([]string, len(required))
	g, gctx := errgroup.WithContext(ctx)
	for i, alias := range required {
		g.Go(func() error {
			id, err := b.ids.ResolveAliasToID(gctx, userID, alias)
			if err != nil {
				return fmt.Errorf("participant %q: %w", alias, err)
			}
			ledgerIDs[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	accounts, err := b.ids.ResolveBatch(ctx, dedup(ledgerIDs))
	if err != nil {
		return nil, err
	}
	byLedgerID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byLedgerID[a.LedgerID] = a
	}
	for i, id := range ledgerIDs {
		if _, ok := byLedgerID[id]; !ok {
			return nil, fmt.Errorf("participant %q (%s): %w", required[i], id, errs.ErrAccountNotFound)
		}
	}

	signers, err := decryptSigners(ctx, accounts, passphrase)
	if err != nil {
		return nil, err
	}

	payer, err := b.resolvePayer(ctx, userID, payerAlias, accounts)
	if err != nil {
		return nil, err
	}
	client, err := b.clients.ForPayer(network, payer)
	if err != nil {
		return nil, err
	}
	return &SignerSet{Signers: signers, Payer: payer, Client: client}, nil
}

// decryptSigners unlocks each account owner's escrow key and decrypts that
// account's key pairs, fanning out since accounts are disjoint.
func decryptSigners(ctx context.Context, accounts []model.Account, passphrase string) ([]SignerKey, error) {
	var (
		mu      sync.Mutex
		signers []SignerKey
	)
	g, _ := errgroup.WithContext(ctx)
	for _, account := range accounts {
		g.Go(func() error {
			escrowKey, err := ResolveEscrowKey(account.Owner, passphrase)
			if err != nil {
				return fmt.Errorf("account %s: %w", account.LedgerID, err)
			}
			for _, kp := range account.Keys {
				priv, err := DecryptKeyPair(kp, escrowKey)
				if err != nil {
					return fmt.Errorf("account %s key %s: %w", account.LedgerID, kp.ID, err)
				}
				mu.Lock()
				signers = append(signers, SignerKey{Type: kp.Type, PublicKey: kp.PublicKey, Key: priv})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return signers, nil
}

// resolvePayer binds the fee payer: explicit alias first, then the sole
// signing participant, else ErrNoPayerID.
func (b *SignerSetBuilder) resolvePayer(ctx context.Context, userID uuid.UUID, payerAlias string, participants []model.Account) (hedera.EntityID, error) {
	if payerAlias != "" {
		id, err := b.ids.ResolveAliasToID(ctx, userID, payerAlias)
		if err != nil {
			return hedera.EntityID{}, fmt.Errorf("payer %q: %w", payerAlias, err)
		}
		return hedera.ParseEntityID(id)
	}
	if len(participants) == 1 {
		return hedera.ParseEntityID(participants[0].LedgerID)
	}
	return hedera.EntityID{}, errs.ErrNoPayerID
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
