package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/repository"
)

// TopicService creates consensus topics.
type TopicService struct {
	users   repository.UserRepository
	ids     *IdentityResolver
	clients Clients
}

// NewTopicService constructs a topic service.
func NewTopicService(users repository.UserRepository, ids *IdentityResolver, clients Clients) *TopicService {
	return &TopicService{users: users, ids: ids, clients: clients}
}

// CreateTopicInput describes a consensus topic. Admin and submit keys, when
// aliased, reuse the named account's first stored public key.
type CreateTopicInput struct {
	Memo        string
	AdminAlias  string
	SubmitAlias string
	PayerAlias  string
}

// CreateTopic submits a topic-creation transaction and returns the new
// topic's canonical ID. When an admin key is set, the admin account's
// decrypted keys co-sign. The fee falls to the explicit payer, then the admin
// account, then the service operator.
func (s *TopicService) CreateTopic(ctx context.Context, userID uuid.UUID, in CreateTopicInput, passphrase string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	tx := hedera.NewTopicCreateTransaction().SetMemo(in.Memo)

	var admin *accountRef
	var adminSigners []SignerKey
	if in.AdminAlias != "" {
		account, signers, err := resolveSigners(ctx, s.ids, userID, in.AdminAlias, "admin account", passphrase)
		if err != nil {
			return "", err
		}
		key, err := firstPublicKey(account.Keys)
		if err != nil {
			return "", fmt.Errorf("admin account %q: %w", in.AdminAlias, err)
		}
		tx.SetAdminKey(key)
		admin = &accountRef{ledgerID: account.LedgerID}
		adminSigners = signers
	}
	if in.SubmitAlias != "" {
		account, err := s.ids.ResolveAlias(ctx, userID, in.SubmitAlias)
		if err != nil {
			return "", fmt.Errorf("submit account %q: %w", in.SubmitAlias, err)
		}
		hydrated, err := s.ids.ResolveBatch(ctx, []string{account.LedgerID})
		if err != nil {
			return "", err
		}
		if len(hydrated) == 0 {
			return "", fmt.Errorf("submit account %q: %w", in.SubmitAlias, errs.ErrAccountNotFound)
		}
		key, err := firstPublicKey(hydrated[0].Keys)
		if err != nil {
			return "", fmt.Errorf("submit account %q: %w", in.SubmitAlias, err)
		}
		tx.SetSubmitKey(key)
	}

	client, err := s.clientFor(ctx, userID, in.PayerAlias, admin, user.Network)
	if err != nil {
		return "", err
	}
	frozen, err := tx.FreezeWith(client)
	if err != nil {
		return "", err
	}
	if len(adminSigners) > 0 {
		if err := frozen.SignAll(signerKeys(adminSigners)); err != nil {
			return "", err
		}
	}
	receipt, err := execute(ctx, frozen, client)
	if err != nil {
		return "", err
	}
	if receipt.EntityID == nil {
		return "", fmt.Errorf("%w: no topic id in receipt", errs.ErrSubmissionFailed)
	}
	return receipt.EntityID.String(), nil
}

type accountRef struct{ ledgerID string }

// clientFor picks the fee payer for topic creation.
func (s *TopicService) clientFor(ctx context.Context, userID uuid.UUID, payerAlias string, admin *accountRef, network hedera.Network) (hedera.Client, error) {
	switch {
	case payerAlias != "":
		id, err := s.ids.ResolveAliasToID(ctx, userID, payerAlias)
		if err != nil {
			return nil, fmt.Errorf("payer %q: %w", payerAlias, err)
		}
		payer, err := hedera.ParseEntityID(id)
		if err != nil {
			return nil, err
		}
		return s.clients.ForPayer(network, payer)
	case admin != nil:
		payer, err := hedera.ParseEntityID(admin.ledgerID)
		if err != nil {
			return nil, err
		}
		return s.clients.ForPayer(network, payer)
	default:
		_, client, err := s.clients.Operator(network)
		return client, err
	}
}
