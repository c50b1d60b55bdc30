// Package httpserver exposes the application services over HTTP.
package httpserver

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/gomintco/gomint-api/internal/service"
)

// Deps aggregates the services the HTTP layer exposes.
type Deps struct {
	Auth     service.AuthService
	Accounts *service.AccountService
	Tokens   *service.TokenService
	Topics   *service.TopicService
	Deals    *service.DealService
	JWTKey   []byte
	Logger   *zap.Logger
}

// Server wraps the Fiber application.
type Server struct {
	app *fiber.App
}

// New builds the HTTP server and wires all routes.
func New(d Deps) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "gomint-api",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestLogger(d.Logger))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	auth := newAuthHandler(d.Auth)
	accounts := newAccountHandler(d.Accounts)
	tokens := newTokenHandler(d.Tokens)
	topics := newTopicHandler(d.Topics)
	deals := newDealHandler(d.Deals)

	v1 := app.Group("/v1")
	v1.Post("/auth/register", auth.Register)
	v1.Post("/auth/login", auth.Login)

	guarded := v1.Group("", jwtAuth(d.JWTKey))
	guarded.Post("/auth/encryption-key", auth.SetEncryptionKey)
	guarded.Post("/accounts", accounts.Create)
	guarded.Patch("/accounts/:ledgerId/alias", accounts.UpdateAlias)
	guarded.Post("/tokens", tokens.Create)
	guarded.Post("/tokens/mint", tokens.Mint)
	guarded.Post("/tokens/associate", tokens.Associate)
	guarded.Post("/topics", topics.Create)
	guarded.Post("/deals", deals.Create)
	guarded.Get("/deals/:dealId/bytes", deals.Bytes)

	return &Server{app: app}
}

// Listen starts serving on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
