package httpserver

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/service"
)

type authHandler struct {
	svc service.AuthService
}

func newAuthHandler(svc service.AuthService) *authHandler {
	return &authHandler{svc: svc}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Network  string `json:"network"`
}

// Register creates a user with a freshly generated escrow key.
func (h *authHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	network := hedera.Testnet
	if req.Network != "" {
		var err error
		if network, err = hedera.ParseNetwork(req.Network); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	userID, err := h.svc.Register(c.UserContext(), req.Username, req.Password, network)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"user_id": userID})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Network     string    `json:"network"`
}

// Login authenticates and issues an access token.
func (h *authHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	tokens, user, err := h.svc.LoginWithIP(c.UserContext(), req.Username, req.Password, c.IP())
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(loginResponse{
		AccessToken: tokens.AccessToken,
		ExpiresAt:   tokens.ExpiresAt,
		UserID:      user.ID.String(),
		Network:     string(user.Network),
	})
}

type encryptionKeyRequest struct {
	Passphrase string `json:"passphrase"`
}

// SetEncryptionKey encrypts the caller's escrow key under their passphrase.
func (h *authHandler) SetEncryptionKey(c *fiber.Ctx) error {
	userID, err := authedUser(c)
	if err != nil {
		return err
	}
	var req encryptionKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetEncryptionKey(c.UserContext(), userID, req.Passphrase); err != nil {
		return httpError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
