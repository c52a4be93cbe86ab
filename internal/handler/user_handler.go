package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceclone/internal/service"
)

// UserHandler serves the caller's own account.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Me godoc
// @Summary Current user profile and credit balance
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.svc.GetProfile(c.Request().Context(), identity.Username)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}
