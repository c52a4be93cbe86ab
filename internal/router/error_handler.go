package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "voiceclone/internal/errors"
)

// NewErrorHandler renders every error as {"detail": ...}.
func NewErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		var body apperrors.ErrorResponse

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			switch msg := he.Message.(type) {
			case apperrors.ErrorResponse:
				body = msg
			case string:
				body = apperrors.ErrorResponse{Detail: msg}
			default:
				body = apperrors.ErrorResponse{Detail: fmt.Sprint(msg)}
			}
			if status >= http.StatusInternalServerError && he.Internal != nil {
				logger.Error("request failed", zap.Error(he.Internal))
			}
		} else {
			httpErr := apperrors.MapErrorToHTTP(err)
			status = httpErr.StatusCode
			body = httpErr.ToErrorResponse()
			if status >= http.StatusInternalServerError {
				logger.Error("unhandled error", zap.Error(err))
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}
