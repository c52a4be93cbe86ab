package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceclone/internal/auth"
	"voiceclone/internal/errors"
	"voiceclone/internal/service"
)

// AuthHandler handles signup and token endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a user signup request.
type SignupRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=20"`
	Password  string `json:"password" validate:"required,min=6,max=20"`
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"required,min=1,max=50"`
}

// LoginRequest represents an OAuth2 password-flow form.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// MessageResponse is a plain acknowledgment.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Signup godoc
// @Summary Create an account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Detail: "invalid request body",
			Code:   "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}
	// max=20 counts characters; bcrypt limits bytes.
	if len(req.Password) > auth.MaxPasswordBytes {
		return validationError(errors.ErrPasswordTooLong)
	}

	err := h.authService.Signup(c.Request().Context(), service.SignupInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "User created successfully"})
}

// Login godoc
// @Summary Exchange credentials for a bearer token
// @Tags Authentication
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/token [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Detail: "invalid request body",
			Code:   "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
