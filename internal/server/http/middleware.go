package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// jwtAuth validates the bearer token and stores the subject's user ID in the
// request locals.
func jwtAuth(signKey []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		claims := jwt.RegisteredClaims{}
		tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return signKey, nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		userID, err := uuid.FromString(claims.Subject)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token subject")
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// authedUser extracts the authenticated user ID placed by jwtAuth.
func authedUser(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	return id, nil
}

// requestLogger logs each request with method, path, status and latency.
func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	}
}
