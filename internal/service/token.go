package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/repository"
)

// TokenService assembles and submits token transactions: creation, minting
// and association.
type TokenService struct {
	users   repository.UserRepository
	ids     *IdentityResolver
	clients Clients
}

// NewTokenService constructs a token service.
func NewTokenService(users repository.UserRepository, ids *IdentityResolver, clients Clients) *TokenService {
	return &TokenService{users: users, ids: ids, clients: clients}
}

// AssociateTokens opts the aliased account into holding the given tokens,
// signing with that account's decrypted keys, and returns the terminal
// receipt status.
func (s *TokenService) AssociateTokens(
	ctx context.Context,
	userID uuid.UUID,
	associatingAlias string,
	tokenIDs []string,
	payerAlias string,
	passphrase string,
) (string, error) {
	if len(tokenIDs) == 0 {
		return "", fmt.Errorf("%w: no tokens to associate", errs.ErrValidation)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	account, signers, err := resolveSigners(ctx, s.ids, userID, associatingAlias, "associating account", passphrase)
	if err != nil {
		return "", err
	}
	accountID, err := hedera.ParseEntityID(account.LedgerID)
	if err != nil {
		return "", err
	}

	tx := hedera.NewTokenAssociateTransaction().SetAccount(accountID)
	for _, t := range tokenIDs {
		tokenID, err := hedera.ParseEntityID(t)
		if err != nil {
			return "", err
		}
		tx.AddToken(tokenID)
	}

	payer, err := resolvePayerOr(ctx, s.ids, userID, payerAlias, account)
	if err != nil {
		return "", err
	}
	client, err := s.clients.ForPayer(user.Network, payer)
	if err != nil {
		return "", err
	}
	frozen, err := tx.FreezeWith(client)
	if err != nil {
		return "", err
	}
	if err := frozen.SignAll(signerKeys(signers)); err != nil {
		return "", err
	}
	receipt, err := execute(ctx, frozen, client)
	if err != nil {
		return "", err
	}
	return receipt.Status, nil
}

// CreateTokenInput describes a token class to create. Treasury is an alias of
// the account receiving the initial supply; supply and admin keys, when
// requested, reuse the treasury account's public key.
type CreateTokenInput struct {
	Name          string
	Symbol        string
	Decimals      uint32
	InitialSupply uint64
	NonFungible   bool
	TreasuryAlias string
	WithAdminKey  bool
	WithSupplyKey bool
	CustomFees    []hedera.CustomFee
	PayerAlias    string
}

// CreateToken submits a token-creation transaction signed by the treasury and
// returns the new token's canonical ID.
func (s *TokenService) CreateToken(ctx context.Context, userID uuid.UUID, in CreateTokenInput, passphrase string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	treasury, signers, err := resolveSigners(ctx, s.ids, userID, in.TreasuryAlias, "treasury", passphrase)
	if err != nil {
		return "", err
	}
	treasuryID, err := hedera.ParseEntityID(treasury.LedgerID)
	if err != nil {
		return "", err
	}
	if len(treasury.Keys) == 0 {
		return "", fmt.Errorf("treasury %q has no key pairs", in.TreasuryAlias)
	}
	treasuryKey, err := hedera.ParsePublicKey(treasury.Keys[0].Type, treasury.Keys[0].PublicKey)
	if err != nil {
		return "", err
	}

	tx := hedera.NewTokenCreateTransaction().
		SetName(in.Name).
		SetSymbol(in.Symbol).
		SetDecimals(in.Decimals).
		SetInitialSupply(in.InitialSupply).
		SetNonFungible(in.NonFungible).
		SetTreasury(treasuryID)
	if in.WithAdminKey {
		tx.SetAdminKey(treasuryKey)
	}
	if in.WithSupplyKey {
		tx.SetSupplyKey(treasuryKey)
	}
	for _, fee := range in.CustomFees {
		tx.AddCustomFee(fee)
	}

	payer, err := resolvePayerOr(ctx, s.ids, userID, in.PayerAlias, treasury)
	if err != nil {
		return "", err
	}
	client, err := s.clients.ForPayer(user.Network, payer)
	if err != nil {
		return "", err
	}
	frozen, err := tx.FreezeWith(client)
	if err != nil {
		return "", err
	}
	if err := frozen.SignAll(signerKeys(signers)); err != nil {
		return "", err
	}
	receipt, err := execute(ctx, frozen, client)
	if err != nil {
		return "", err
	}
	if receipt.EntityID == nil {
		return "", fmt.Errorf("%w: no token id in receipt", errs.ErrSubmissionFailed)
	}
	return receipt.EntityID.String(), nil
}

// MintTokenInput describes a mint: Amount for fungible supply, Metadata
// entries (one per serial) for NFTs. SupplyKey identifies the stored public
// key authorized to mint; the owning account is found by fragment match.
type MintTokenInput struct {
	TokenID    string
	Amount     uint64
	Metadata   []string
	SupplyKey  string
	PayerAlias string
}

// MintToken mints supply or serials, signed by the supply-key owner's
// decrypted keys, and returns the receipt (status plus any new serials).
func (s *TokenService) MintToken(ctx context.Context, userID uuid.UUID, in MintTokenInput, passphrase string) (hedera.Receipt, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return hedera.Receipt{}, err
	}
	tokenID, err := hedera.ParseEntityID(in.TokenID)
	if err != nil {
		return hedera.Receipt{}, err
	}
	owner, err := s.ids.ResolveByPublicKey(ctx, userID, in.SupplyKey)
	if err != nil {
		return hedera.Receipt{}, fmt.Errorf("supply-key owner: %w", err)
	}
	_, signers, err := resolveSigners(ctx, s.ids, userID, owner.LedgerID, "supply-key owner", passphrase)
	if err != nil {
		return hedera.Receipt{}, err
	}

	tx := hedera.NewTokenMintTransaction().SetToken(tokenID).SetAmount(in.Amount)
	for _, meta := range in.Metadata {
		tx.AddMetadata(meta)
	}

	payer, err := resolvePayerOr(ctx, s.ids, userID, in.PayerAlias, owner)
	if err != nil {
		return hedera.Receipt{}, err
	}
	client, err := s.clients.ForPayer(user.Network, payer)
	if err != nil {
		return hedera.Receipt{}, err
	}
	frozen, err := tx.FreezeWith(client)
	if err != nil {
		return hedera.Receipt{}, err
	}
	if err := frozen.SignAll(signerKeys(signers)); err != nil {
		return hedera.Receipt{}, err
	}
	return execute(ctx, frozen, client)
}

func signerKeys(signers []SignerKey) []hedera.PrivateKey {
	keys := make([]hedera.PrivateKey, len(signers))
	for i, s := range signers {
		keys[i] = s.Key
	}
	return keys
}
