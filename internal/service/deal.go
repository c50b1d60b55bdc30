package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/gofrs/uuid/v5"

	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/model"
	"github.com/gomintco/gomint-api/internal/repository"
)

// DealService stores content-addressed multi-party transfers and produces
// signed transaction bytes for them on demand.
type DealService struct {
	deals   repository.DealRepository
	users   repository.UserRepository
	ids     *IdentityResolver
	signers *SignerSetBuilder
	mirror  hedera.Mirror
}

// NewDealService constructs a deal service.
func NewDealService(deals repository.DealRepository, users repository.UserRepository, ids *IdentityResolver, signers *SignerSetBuilder, mirror hedera.Mirror) *DealService {
	return &DealService{deals: deals, users: users, ids: ids, signers: signers, mirror: mirror}
}

// CreateDeal validates the transfer legs, computes the content hash of the
// canonical body and stores the deal. Legs must sum to zero per asset before
// any hash is computed. Two deals with identical content collapse to the same
// identity; re-creating an existing deal returns the existing hash.
func (s *DealService) CreateDeal(ctx context.Context, legs []model.TransferLeg) (string, error) {
	body := model.DealBody{Transfers: legs}
	if err := body.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	hash, err := body.ContentHash()
	if err != nil {
		return "", err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	deal := &model.Deal{ID: id, Hash: hash, Body: body}
	if err := s.deals.Create(ctx, deal); err != nil {
		if errors.Is(err, errs.ErrDuplicateEntity) {
			// Content addressing: same content, same deal.
			return hash, nil
		}
		return "", err
	}
	return hash, nil
}

// GetDealBytesInput carries the read-time parameters of a deal signing.
type GetDealBytesInput struct {
	DealID        string
	ReceiverAlias string
	PayerAlias    string
	Serial        int64
	Passphrase    string
}

// GetDealBytes loads a stored deal, substitutes the reserved
// "payer"/"receiver" placeholders with the supplied aliases, fills in a
// missing NFT serial from the seller's current holdings, derives and applies
// the signer set, and returns the frozen transaction bytes.
//
// Substitution happens here, at read time; the stored deal stays
// alias-agnostic so different receivers and payers can sign the same content.
func (s *DealService) GetDealBytes(ctx context.Context, userID uuid.UUID, in GetDealBytesInput) ([]byte, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	deal, err := s.deals.GetByHash(ctx, in.DealID)
	if err != nil {
		return nil, err
	}

	legs, err := substituteRoles(deal.Body.Transfers, in.ReceiverAlias, in.PayerAlias)
	if err != nil {
		return nil, err
	}

	set, err := s.signers.Build(ctx, user.Network, userID, legs, in.PayerAlias, in.Passphrase)
	if err != nil {
		return nil, err
	}

	tx := hedera.NewTransferTransaction()
	for _, leg := range legs {
		switch l := leg.(type) {
		case model.HbarLeg:
			account, err := s.legEntityID(ctx, userID, l.Account)
			if err != nil {
				return nil, err
			}
			tx.AddHbarTransfer(account, l.Amount)
		case model.TokenLeg:
			token, err := hedera.ParseEntityID(l.Token)
			if err != nil {
				return nil, err
			}
			account, err := s.legEntityID(ctx, userID, l.Account)
			if err != nil {
				return nil, err
			}
			tx.AddTokenTransfer(token, account, l.Amount)
		case model.NftLeg:
			token, err := hedera.ParseEntityID(l.Token)
			if err != nil {
				return nil, err
			}
			sender, err := s.legEntityID(ctx, userID, l.Sender)
			if err != nil {
				return nil, err
			}
			receiver, err := s.legEntityID(ctx, userID, l.Receiver)
			if err != nil {
				return nil, err
			}
			serial := l.Serial
			if in.Serial > 0 {
				serial = in.Serial
			}
			if serial == 0 {
				serial, err = s.pickSerial(ctx, token, sender)
				if err != nil {
					return nil, err
				}
			}
			tx.AddNftTransfer(token, serial, sender, receiver)
		}
	}

	frozen, err := tx.FreezeWith(set.Client)
	if err != nil {
		return nil, err
	}
	if err := frozen.SignAll(set.Keys()); err != nil {
		return nil, err
	}
	return frozen.Bytes()
}

// legEntityID resolves a leg party (canonical ID or alias) to its entity ID.
func (s *DealService) legEntityID(ctx context.Context, userID uuid.UUID, party string) (hedera.EntityID, error) {
	id, err := s.ids.ResolveAliasToID(ctx, userID, party)
	if err != nil {
		return hedera.EntityID{}, fmt.Errorf("participant %q: %w", party, err)
	}
	return hedera.ParseEntityID(id)
}

// pickSerial selects one of the sender's currently held serials at random.
func (s *DealService) pickSerial(ctx context.Context, token, sender hedera.EntityID) (int64, error) {
	serials, err := s.mirror.OwnedSerials(ctx, token, sender)
	if err != nil {
		return 0, err
	}
	if len(serials) == 0 {
		return 0, fmt.Errorf("account %s holds no serials of token %s", sender, token)
	}
	return serials[rand.Intn(len(serials))], nil
}

// substituteRoles replaces the reserved "payer"/"receiver" tokens in the
// stored legs. A deal that references "payer" requires a payer alias.
func substituteRoles(legs []model.TransferLeg, receiverAlias, payerAlias string) ([]model.TransferLeg, error) {
	resolve := func(party string) (string, error) {
		switch party {
		case model.RoleReceiver:
			if receiverAlias == "" {
				return "", fmt.Errorf("%w: deal references %q but no receiver supplied", errs.ErrValidation, model.RoleReceiver)
			}
			return receiverAlias, nil
		case model.RolePayer:
			if payerAlias == "" {
				return "", fmt.Errorf("deal references %q: %w", model.RolePayer, errs.ErrNoPayerID)
			}
			return payerAlias, nil
		default:
			return party, nil
		}
	}
	out := make([]model.TransferLeg, 0, len(legs))
	for _, leg := range legs {
		switch l := leg.(type) {
		case model.HbarLeg:
			account, err := resolve(l.Account)
			if err != nil {
				return nil, err
			}
			l.Account = account
			out = append(out, l)
		case model.TokenLeg:
			account, err := resolve(l.Account)
			if err != nil {
				return nil, err
			}
			l.Account = account
			out = append(out, l)
		case model.NftLeg:
			sender, err := resolve(l.Sender)
			if err != nil {
				return nil, err
			}
			receiver, err := resolve(l.Receiver)
			if err != nil {
				return nil, err
			}
			l.Sender, l.Receiver = sender, receiver
			out = append(out, l)
		}
	}
	return out, nil
}
