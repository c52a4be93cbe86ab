package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceclone/internal/auth"
	"voiceclone/internal/errors"
)

// IdentityContextKey is where the bearer middleware stores the caller.
const IdentityContextKey = "user"

// respondError maps a domain error to its HTTP form and keeps the cause for logging.
func respondError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func validationError(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Detail: err.Error(),
		Code:   "VALIDATION_ERROR",
	})
}

func currentIdentity(c echo.Context) (*auth.Identity, error) {
	identity, ok := c.Get(IdentityContextKey).(*auth.Identity)
	if !ok || identity == nil {
		return nil, respondError(errors.ErrUnauthorized)
	}
	return identity, nil
}
