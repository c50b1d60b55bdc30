package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/service"
)

type tokenHandler struct {
	svc *service.TokenService
}

func newTokenHandler(svc *service.TokenService) *tokenHandler {
	return &tokenHandler{svc: svc}
}

// customFeeRequest is the wire form of one fee schedule entry, discriminated
// by fee_type.
type customFeeRequest struct {
	FeeType        string  `json:"fee_type"`
	Amount         int64   `json:"amount"`
	Token          string  `json:"token"`
	Numerator      int64   `json:"numerator"`
	Denominator    int64   `json:"denominator"`
	Min            int64   `json:"min"`
	Max            int64   `json:"max"`
	FallbackAmount int64   `json:"fallback_amount"`
	Collector      string  `json:"collector"`
}

func (r customFeeRequest) toFee() (hedera.CustomFee, error) {
	collector, err := hedera.ParseEntityID(r.Collector)
	if err != nil {
		return nil, fmt.Errorf("fee collector: %w", err)
	}
	switch r.FeeType {
	case "fixed":
		fee := hedera.FixedFee{Amount: r.Amount, Collector: collector}
		if r.Token != "" {
			token, err := hedera.ParseEntityID(r.Token)
			if err != nil {
				return nil, fmt.Errorf("fee token: %w", err)
			}
			fee.Token = &token
		}
		return fee, nil
	case "fractional":
		return hedera.FractionalFee{
			Numerator:   r.Numerator,
			Denominator: r.Denominator,
			Min:         r.Min,
			Max:         r.Max,
			Collector:   collector,
		}, nil
	case "royalty":
		return hedera.RoyaltyFee{
			Numerator:      r.Numerator,
			Denominator:    r.Denominator,
			FallbackAmount: r.FallbackAmount,
			Collector:      collector,
		}, nil
	default:
		return nil, fmt.Errorf("unknown fee_type %q", r.FeeType)
	}
}

type createTokenRequest struct {
	Name          string             `json:"name"`
	Symbol        string             `json:"symbol"`
	Decimals      uint32             `json:"decimals"`
	InitialSupply uint64             `json:"initial_supply"`
	NonFungible   bool               `json:"non_fungible"`
	Treasury      string             `json:"treasury"`
	WithAdminKey  bool               `json:"with_admin_key"`
	WithSupplyKey bool               `json:"with_supply_key"`
	CustomFees    []customFeeRequest `json:"custom_fees"`
	Payer         string             `json:"payer"`
	Passphrase    string             `json:"passphrase"`
}

// Create submits a token-creation transaction signed by the treasury.
func (h *tokenHandler) Create(c *fiber.Ctx) error {
	userID, err := authedUser(c)
	if err != nil {
		return err
	}
	var req createTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	fees := make([]hedera.CustomFee, 0, len(req.CustomFees))
	for _, f := range req.CustomFees {
		fee, err := f.toFee()
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		fees = append(fees, fee)
	}
	tokenID, err := h.svc.CreateToken(c.UserContext(), userID, service.CreateTokenInput{
		Name:          req.Name,
		Symbol:        req.Symbol,
		Decimals:      req.Decimals,
		InitialSupply: req.InitialSupply,
		NonFungible:   req.NonFungible,
		TreasuryAlias: req.Treasury,
		WithAdminKey:  req.WithAdminKey,
		WithSupplyKey: req.WithSupplyKey,
		CustomFees:    fees,
		PayerAlias:    req.Payer,
	}, req.Passphrase)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"token_id": tokenID})
}

type mintTokenRequest struct {
	TokenID    string   `json:"token_id"`
	Amount     uint64   `json:"amount"`
	Metadata   []string `json:"metadata"`
	SupplyKey  string   `json:"supply_key"`
	Payer      string   `json:"payer"`
	Passphrase string   `json:"passphrase"`
}

// Mint mints fungible supply or NFT serials.
func (h *tokenHandler) Mint(c *fiber.Ctx) error {
	userID, err := authedUser(c)
	if err != nil {
		return err
	}
	var req mintTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	receipt, err := h.svc.MintToken(c.UserContext(), userID, service.MintTokenInput{
		TokenID:    req.TokenID,
		Amount:     req.Amount,
		Metadata:   req.Metadata,
		SupplyKey:  req.SupplyKey,
		PayerAlias: req.Payer,
	}, req.Passphrase)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":  receipt.Status,
		"serials": receipt.Serials,
	})
}

type associateTokensRequest struct {
	Account    string   `json:"account"`
	TokenIDs   []string `json:"token_ids"`
	Payer      string   `json:"payer"`
	Passphrase string   `json:"passphrase"`
}

// Associate opts an account into holding the given tokens.
func (h *tokenHandler) Associate(c *fiber.Ctx) error {
	userID, err := authedUser(c)
	if err != nil {
		return err
	}
	var req associateTokensRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	status, err := h.svc.AssociateTokens(c.UserContext(), userID, req.Account, req.TokenIDs, req.Payer, req.Passphrase)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": status})
}
