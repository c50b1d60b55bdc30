package httpserver

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gomintco/gomint-api/internal/errs"
)

// httpError maps service errors onto HTTP status codes. Unknown errors come
// back as 500 with the message suppressed.
func httpError(err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrRateLimited):
		return fiber.NewError(http.StatusTooManyRequests, err.Error())
	case errors.Is(err, errs.ErrDuplicateEntity):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrValidation),
		errors.Is(err, errs.ErrEncryptionKeyNotProvided),
		errors.Is(err, errs.ErrDecryptionFailure),
		errors.Is(err, errs.ErrInvalidKeyType),
		errors.Is(err, errs.ErrNoPayerID),
		errors.Is(err, errs.ErrNotFrozen):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrSubmissionFailed):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "internal error")
	}
}
