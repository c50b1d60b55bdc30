package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/gomintco/gomint-api/internal/model"
	"github.com/gomintco/gomint-api/internal/service"
)

type dealHandler struct {
	svc *service.DealService
}

func newDealHandler(svc *service.DealService) *dealHandler {
	return &dealHandler{svc: svc}
}

// Create stores a content-addressed deal and returns its hash identity.
func (h *dealHandler) Create(c *fiber.Ctx) error {
	if _, err := authedUser(c); err != nil {
		return err
	}
	var body model.DealBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	hash, err := h.svc.CreateDeal(c.UserContext(), body.Transfers)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"deal_id": hash})
}

// Bytes assembles, signs and returns the deal's frozen transaction bytes.
// Role placeholders are bound here: receiver and payer come from query
// parameters, the passphrase from a header so it stays out of access logs.
func (h *dealHandler) Bytes(c *fiber.Ctx) error {
	userID, err := authedUser(c)
	if err != nil {
		return err
	}
	var serial int64
	if v := c.Query("serial"); v != "" {
		serial, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid serial")
		}
	}
	bytes, err := h.svc.GetDealBytes(c.UserContext(), userID, service.GetDealBytesInput{
		DealID:        c.Params("dealId"),
		ReceiverAlias: c.Query("receiver"),
		PayerAlias:    c.Query("payer"),
		Serial:        serial,
		Passphrase:    c.Get("X-Passphrase"),
	})
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"deal_id": c.Params("dealId"),
		"bytes":   bytes,
	})
}
