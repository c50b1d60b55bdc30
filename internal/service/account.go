package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
	"github.com/gomintco/gomint-api/internal/repository"
)

// AccountService creates ledger accounts under custody and manages their
// aliases.
type AccountService struct {
	users    repository.UserRepository
	accounts repository.AccountRepository
	vault    *KeyVault
	clients  Clients
	log      *zap.Logger
}

// NewAccountService constructs an account service.
func NewAccountService(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	vault *KeyVault,
	clients Clients,
	log *zap.Logger,
) *AccountService {
	return &AccountService{users: users, accounts: accounts, vault: vault, clients: clients, log: log}
}

// CreateAccountInput captures the key material request for a new account.
// Either Type alone (a fresh custodial key pair is generated) or Type plus
// PublicKey (the caller keeps the private key) must be set.
type CreateAccountInput struct {
	Type           hedera.KeyType
	PublicKey      string
	InitialBalance int64
	Alias          string
}

// CreateAccount generates or accepts key material, submits an
// account-creation transaction paid by the service operator, and records the
// resulting account and key pair.
//
// Bookkeeping failures after the ledger account exists are logged but not
// rolled back: the ledger side effect is not compensatable.
func (s *AccountService) CreateAccount(ctx context.Context, userID uuid.UUID, in CreateAccountInput, passphrase string) (*model.Account, error) {
	if model.IsReservedAlias(in.Alias) {
		return nil, fmt.Errorf("%w: alias %q is reserved", errs.ErrValidation, in.Alias)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		pending *model.KeyPair
		pub     hedera.PublicKey
	)
	if in.PublicKey != "" {
		pub, err = hedera.ParsePublicKey(in.Type, in.PublicKey)
		if err != nil {
			return nil, err
		}
	} else {
		escrowKey, err := ResolveEscrowKey(user, passphrase)
		if err != nil {
			return nil, err
		}
		var priv hedera.PrivateKey
		pending, priv, err = s.vault.Generate(escrowKey, in.Type)
		if err != nil {
			return nil, err
		}
		pub = priv.PublicKey()
	}

	operator, client, err := s.clients.Operator(user.Network)
	if err != nil {
		return nil, err
	}
	frozen, err := hedera.NewAccountCreateTransaction().
		SetKey(pub).
		SetInitialBalance(in.InitialBalance).
		FreezeWith(client)
	if err != nil {
		return nil, err
	}
	if err := frozen.Sign(operator.Key); err != nil {
		return nil, err
	}
	receipt, err := execute(ctx, frozen, client)
	if err != nil {
		return nil, err
	}
	if receipt.EntityID == nil {
		return nil, fmt.Errorf("%w: no account id in receipt", errs.ErrSubmissionFailed)
	}

	account := &model.Account{
		UserID:   userID,
		LedgerID: receipt.EntityID.String(),
		Alias:    in.Alias,
	}
	if account.Alias == "" {
		account.Alias = account.LedgerID
	}
	if account.ID, err = uuid.NewV4(); err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		s.log.Error("account bookkeeping failed after ledger creation",
			zap.String("ledgerID", account.LedgerID),
			zap.Error(err),
		)
		return account, nil
	}
	if pending != nil {
		pending.UserID = userID
		pending.AccountID = uuid.NullUUID{UUID: account.ID, Valid: true}
		if err := s.vault.Save(ctx, pending); err != nil {
			s.log.Error("key pair bookkeeping failed after ledger creation",
				zap.String("ledgerID", account.LedgerID),
				zap.Error(err),
			)
		}
	}
	return account, nil
}

// UpdateAlias renames the user's account, rejecting the reserved role tokens.
func (s *AccountService) UpdateAlias(ctx context.Context, userID uuid.UUID, ledgerID, alias string) error {
	if model.IsReservedAlias(alias) {
		return fmt.Errorf("%w: alias %q is reserved", errs.ErrValidation, alias)
	}
	if alias == "" {
		return fmt.Errorf("%w: empty alias", errs.ErrValidation)
	}
	return s.accounts.UpdateAlias(ctx, userID, ledgerID, alias)
}

// execute submits a frozen, signed transaction and awaits its receipt.
// Failures carry the underlying cause; retry policy belongs to the caller.
func execute(ctx context.Context, frozen *hedera.FrozenTransaction, client hedera.Client) (hedera.Receipt, error) {
	handle, err := frozen.Execute(ctx, client)
	if err != nil {
		return hedera.Receipt{}, fmt.Errorf("%w: %v", errs.ErrSubmissionFailed, err)
	}
	receipt, err := handle.Receipt(ctx)
	if err != nil {
		return hedera.Receipt{}, err
	}
	return receipt, nil
}
