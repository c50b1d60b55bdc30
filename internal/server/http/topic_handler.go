package httpserver

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gomintco/gomint-api/internal/service"
)

type topicHandler struct {
	svc *service.TopicService
}

func newTopicHandler(svc *service.TopicService) *topicHandler {
	return &topicHandler{svc: svc}
}

type createTopicRequest struct {
	Memo       string `json:"memo"`
	Admin      string `json:"admin"`
	Submit     string `json:"submit"`
	Payer      string `json:"payer"`
	Passphrase string `json:"passphrase"`
}

// Create submits a topic-creation transaction.
func (h *topicHandler) Create(c *fiber.Ctx) error {
	userID, err := authedUser(c)
	if err != nil {
		return err
	}
	var req createTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	topicID, err := h.svc.CreateTopic(c.UserContext(), userID, service.CreateTopicInput{
		Memo:        req.Memo,
		AdminAlias:  req.Admin,
		SubmitAlias: req.Submit,
		PayerAlias:  req.Payer,
	}, req.Passphrase)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"topic_id": topicID})
}
