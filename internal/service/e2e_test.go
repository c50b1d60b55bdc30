package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
)

// TestCustodialFlow walks the full custody path against the in-process
// ledger: create an account with a vault-generated key, then associate a
// token with the account's own decrypted key signing the transaction.
func TestCustodialFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clients, _, _ := newTestClients(t)
	users := &fakeUsers{byName: map[string]*model.User{}}
	keyPairs := &fakeKeyPairs{}
	accounts := &fakeAccounts{keyPairs: keyPairs, users: users}

	userID := uuid.Must(uuid.NewV4())
	users.byName["alice"] = &model.User{
		ID:        userID,
		Username:  "alice",
		EscrowKey: "E",
		Network:   hedera.Testnet,
	}

	vault := NewKeyVault(keyPairs)
	ids := NewIdentityResolver(accounts)
	accountSvc := NewAccountService(users, accounts, vault, clients, zap.NewNop())
	tokenSvc := NewTokenService(users, ids, clients)

	account, err := accountSvc.CreateAccount(ctx, userID, CreateAccountInput{
		Type:           hedera.KeyTypeED25519,
		InitialBalance: 100,
		Alias:          "main",
	}, "")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if !hedera.IsEntityID(account.LedgerID) {
		t.Fatalf("ledger id %q not canonical", account.LedgerID)
	}
	if account.Alias != "main" {
		t.Fatalf("alias = %q", account.Alias)
	}
	if len(keyPairs.pairs) != 1 {
		t.Fatalf("vault stored %d key pairs, want 1", len(keyPairs.pairs))
	}
	if kp := keyPairs.pairs[0]; !kp.AccountID.Valid || kp.AccountID.UUID != account.ID {
		t.Fatalf("key pair not bound to account: %+v", kp)
	}

	status, err := tokenSvc.AssociateTokens(ctx, userID, "main", []string{"0.0.200"}, "", "")
	if err != nil {
		t.Fatalf("AssociateTokens: %v", err)
	}
	if status != hedera.StatusSuccess {
		t.Fatalf("status = %q, want %q", status, hedera.StatusSuccess)
	}

	// The same association works when the account is referenced by its
	// canonical ID instead of the alias.
	if _, err := tokenSvc.AssociateTokens(ctx, userID, account.LedgerID, []string{"0.0.201"}, "", ""); err != nil {
		t.Fatalf("AssociateTokens by canonical id: %v", err)
	}
}

func TestTokenLifecycle_CreateAndMint(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clients, ledger, _ := newTestClients(t)
	users := &fakeUsers{byName: map[string]*model.User{}}
	accounts := &fakeAccounts{users: users}

	userID := uuid.Must(uuid.NewV4())
	owner := &model.User{ID: userID, Username: "alice", EscrowKey: "E", Network: hedera.Testnet}
	users.byName["alice"] = owner
	treasuryKey := seedAccount(t, accounts, ledger, owner, "0.0.100", "treasury")

	ids := NewIdentityResolver(accounts)
	tokenSvc := NewTokenService(users, ids, clients)

	tokenID, err := tokenSvc.CreateToken(ctx, userID, CreateTokenInput{
		Name:          "Art",
		Symbol:        "ART",
		NonFungible:   true,
		TreasuryAlias: "treasury",
		WithSupplyKey: true,
	}, "")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if !hedera.IsEntityID(tokenID) {
		t.Fatalf("token id %q not canonical", tokenID)
	}

	receipt, err := tokenSvc.MintToken(ctx, userID, MintTokenInput{
		TokenID:   tokenID,
		Metadata:  []string{"serial-1", "serial-2"},
		SupplyKey: treasuryKey.PublicKey().String(),
	}, "")
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	if receipt.Status != hedera.StatusSuccess || len(receipt.Serials) != 2 {
		t.Fatalf("mint receipt: %+v", receipt)
	}

	// A supply key nobody holds cannot mint.
	if _, err := tokenSvc.MintToken(ctx, userID, MintTokenInput{
		TokenID:   tokenID,
		Metadata:  []string{"x"},
		SupplyKey: "feedface",
	}, ""); !errors.Is(err, errs.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound for unknown supply key, got %v", err)
	}
}

func TestTopicCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clients, ledger, _ := newTestClients(t)
	users := &fakeUsers{byName: map[string]*model.User{}}
	accounts := &fakeAccounts{users: users}

	userID := uuid.Must(uuid.NewV4())
	owner := &model.User{ID: userID, Username: "alice", EscrowKey: "E", Network: hedera.Testnet}
	users.byName["alice"] = owner
	seedAccount(t, accounts, ledger, owner, "0.0.100", "admin")

	ids := NewIdentityResolver(accounts)
	topicSvc := NewTopicService(users, ids, clients)

	// Operator pays when neither payer nor admin is set.
	topicID, err := topicSvc.CreateTopic(ctx, userID, CreateTopicInput{Memo: "events"}, "")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	if !hedera.IsEntityID(topicID) {
		t.Fatalf("topic id %q not canonical", topicID)
	}

	// With an admin alias, the admin account signs and pays.
	topicID, err = topicSvc.CreateTopic(ctx, userID, CreateTopicInput{
		Memo:       "governed",
		AdminAlias: "admin",
	}, "")
	if err != nil {
		t.Fatalf("CreateTopic with admin: %v", err)
	}
	if !hedera.IsEntityID(topicID) {
		t.Fatalf("topic id %q not canonical", topicID)
	}
}

func TestAccountService_ReservedAlias(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clients, ledger, _ := newTestClients(t)
	users := &fakeUsers{byName: map[string]*model.User{}}
	keyPairs := &fakeKeyPairs{}
	accounts := &fakeAccounts{keyPairs: keyPairs, users: users}

	userID := uuid.Must(uuid.NewV4())
	owner := &model.User{ID: userID, Username: "alice", EscrowKey: "E", Network: hedera.Testnet}
	users.byName["alice"] = owner

	vault := NewKeyVault(keyPairs)
	accountSvc := NewAccountService(users, accounts, vault, clients, zap.NewNop())

	for _, reserved := range []string{model.RolePayer, model.RoleReceiver} {
		_, err := accountSvc.CreateAccount(ctx, userID, CreateAccountInput{
			Type:  hedera.KeyTypeED25519,
			Alias: reserved,
		}, "")
		if !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("CreateAccount(%q): want ErrValidation, got %v", reserved, err)
		}
	}

	seedAccount(t, accounts, ledger, owner, "0.0.100", "main")
	if err := accountSvc.UpdateAlias(ctx, userID, "0.0.100", model.RolePayer); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("UpdateAlias to reserved: want ErrValidation, got %v", err)
	}
	if err := accountSvc.UpdateAlias(ctx, userID, "0.0.100", "renamed"); err != nil {
		t.Fatalf("UpdateAlias: %v", err)
	}
}
