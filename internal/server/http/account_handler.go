package httpserver

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/service"
)

type accountHandler struct {
	svc *service.AccountService
}

func newAccountHandler(svc *service.AccountService) *accountHandler {
	return &accountHandler{svc: svc}
}

type createAccountRequest struct {
	Type           string `json:"type"`
	PublicKey      string `json:"public_key"`
	InitialBalance int64  `json:"initial_balance"`
	Alias          string `json:"alias"`
	Passphrase     string `json:"passphrase"`
}

type accountResponse struct {
	AccountID string `json:"account_id"`
	Alias     string `json:"alias"`
}

// Create provisions a ledger account under custody.
func (h *accountHandler) Create(c *fiber.Ctx) error {
	userID, err := authedUser(c)
	if err != nil {
		return err
	}
	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	keyType, err := hedera.ParseKeyType(req.Type)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	account, err := h.svc.CreateAccount(c.UserContext(), userID, service.CreateAccountInput{
		Type:           keyType,
		PublicKey:      req.PublicKey,
		InitialBalance: req.InitialBalance,
		Alias:          req.Alias,
	}, req.Passphrase)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(accountResponse{
		AccountID: account.LedgerID,
		Alias:     account.Alias,
	})
}

type updateAliasRequest struct {
	Alias string `json:"alias"`
}

// UpdateAlias renames the caller's account.
func (h *accountHandler) UpdateAlias(c *fiber.Ctx) error {
	userID, err := authedUser(c)
	if err != nil {
		return err
	}
	var req updateAliasRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateAlias(c.UserContext(), userID, c.Params("ledgerId"), req.Alias); err != nil {
		return httpError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
