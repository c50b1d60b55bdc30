package service

import (
	"context"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/gomintco/gomint-api/internal/crypto/envelope"
	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
	"github.com/gomintco/gomint-api/internal/repository"
)

type fakeAccounts struct {
	accounts []model.Account

	// Optional backing stores for hydration, mirroring what the SQL
	// repository joins in on bulk loads.
	keyPairs *fakeKeyPairs
	users    *fakeUsers

	createErr error
}

var _ repository.AccountRepository = (*fakeAccounts)(nil)

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.accounts {
		if existing.UserID == a.UserID && existing.Alias == a.Alias {
			return errs.ErrDuplicateEntity
		}
	}
	f.accounts = append(f.accounts, *a)
	return nil
}

func (f *fakeAccounts) GetByLedgerID(_ context.Context, ledgerID string) (*model.Account, error) {
	for _, a := range f.accounts {
		if a.LedgerID == ledgerID {
			c := a
			return &c, nil
		}
	}
	return nil, errs.ErrAccountNotFound
}

func (f *fakeAccounts) GetByAlias(_ context.Context, userID uuid.UUID, alias string) (*model.Account, error) {
	for _, a := range f.accounts {
		if a.UserID == userID && a.Alias == alias {
			c := a
			return &c, nil
		}
	}
	return nil, errs.ErrAccountNotFound
}

func (f *fakeAccounts) GetByPublicKeyFragment(_ context.Context, userID uuid.UUID, fragment string) (*model.Account, error) {
	for _, a := range f.accounts {
		if a.UserID != userID {
			continue
		}
		for _, kp := range a.Keys {
			if strings.Contains(kp.PublicKey, fragment) {
				c := a
				return &c, nil
			}
		}
	}
	return nil, errs.ErrAccountNotFound
}

func (f *fakeAccounts) ListByLedgerIDs(_ context.Context, ledgerIDs []string) ([]model.Account, error) {
	var out []model.Account
	for _, id := range ledgerIDs {
		for _, a := range f.accounts {
			if a.LedgerID == id {
				out = append(out, f.hydrate(a))
			}
		}
	}
	return out, nil
}

func (f *fakeAccounts) hydrate(a model.Account) model.Account {
	if len(a.Keys) == 0 && f.keyPairs != nil {
		for _, kp := range f.keyPairs.pairs {
			if kp.AccountID.Valid && kp.AccountID.UUID == a.ID {
				a.Keys = append(a.Keys, kp)
			}
		}
	}
	if a.Owner == nil && f.users != nil {
		for _, u := range f.users.byName {
			if u.ID == a.UserID {
				c := *u
				a.Owner = &c
				break
			}
		}
	}
	return a
}

func (f *fakeAccounts) UpdateAlias(_ context.Context, userID uuid.UUID, ledgerID, alias string) error {
	for i, a := range f.accounts {
		if a.UserID == userID && a.LedgerID == ledgerID {
			f.accounts[i].Alias = alias
			return nil
		}
	}
	return errs.ErrAccountNotFound
}

type fakeKeyPairs struct {
	pairs []model.KeyPair
}

var _ repository.KeyPairRepository = (*fakeKeyPairs)(nil)

func (f *fakeKeyPairs) Create(_ context.Context, kp *model.KeyPair) error {
	f.pairs = append(f.pairs, *kp)
	return nil
}

func (f *fakeKeyPairs) ListByUser(_ context.Context, userID uuid.UUID) ([]model.KeyPair, error) {
	var out []model.KeyPair
	for _, kp := range f.pairs {
		if kp.UserID == userID {
			out = append(out, kp)
		}
	}
	return out, nil
}

type fakeDeals struct {
	byHash map[string]*model.Deal
}

var _ repository.DealRepository = (*fakeDeals)(nil)

func (f *fakeDeals) Create(_ context.Context, d *model.Deal) error {
	if f.byHash == nil {
		f.byHash = map[string]*model.Deal{}
	}
	if _, exists := f.byHash[d.Hash]; exists {
		return errs.ErrDuplicateEntity
	}
	c := *d
	f.byHash[d.Hash] = &c
	return nil
}

func (f *fakeDeals) GetByHash(_ context.Context, hash string) (*model.Deal, error) {
	d, ok := f.byHash[hash]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *d
	return &c, nil
}

type fakeMirror struct {
	serials []int64
	err     error
}

func (m *fakeMirror) OwnedSerials(context.Context, hedera.EntityID, hedera.EntityID) ([]int64, error) {
	return m.serials, m.err
}

// newTestClients builds a ClientSet over one in-memory testnet ledger plus an
// operator account registered on it.
func newTestClients(t *testing.T) (*ClientSet, *hedera.InMemoryLedger, Operator) {
	t.Helper()
	ledger := hedera.NewInMemoryLedger(hedera.Testnet)
	opKey, err := hedera.GeneratePrivateKey(hedera.KeyTypeED25519)
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	operator := Operator{ID: hedera.EntityID{Num: 2}, Key: opKey}
	ledger.RegisterAccount(operator.ID, opKey.PublicKey())
	clients := NewClientSet(
		map[hedera.Network]Ledger{hedera.Testnet: ledger},
		map[hedera.Network]Operator{hedera.Testnet: operator},
	)
	return clients, ledger, operator
}

// seedAccount registers a custodial account: a fresh key pair encrypted under
// the owner's escrow key, stored account row, and the matching on-ledger
// registration.
func seedAccount(t *testing.T, accounts *fakeAccounts, ledger *hedera.InMemoryLedger, owner *model.User, ledgerID, alias string) hedera.PrivateKey {
	t.Helper()
	priv, err := hedera.GeneratePrivateKey(hedera.KeyTypeED25519)
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	escrowKey, err := ResolveEscrowKey(owner, "pw")
	if err != nil {
		t.Fatalf("ResolveEscrowKey: %v", err)
	}
	enc, err := envelope.Encrypt(priv.String(), escrowKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	accountID := uuid.Must(uuid.NewV4())
	kp := model.KeyPair{
		ID:                  uuid.Must(uuid.NewV4()),
		UserID:              owner.ID,
		AccountID:           uuid.NullUUID{UUID: accountID, Valid: true},
		Type:                hedera.KeyTypeED25519,
		PublicKey:           priv.PublicKey().String(),
		EncryptedPrivateKey: enc,
	}
	accounts.accounts = append(accounts.accounts, model.Account{
		ID:       accountID,
		UserID:   owner.ID,
		LedgerID: ledgerID,
		Alias:    alias,
		Keys:     []model.KeyPair{kp},
		Owner:    owner,
	})
	entity, err := hedera.ParseEntityID(ledgerID)
	if err != nil {
		t.Fatalf("ParseEntityID: %v", err)
	}
	if ledger != nil {
		ledger.RegisterAccount(entity, priv.PublicKey())
	}
	return priv
}
