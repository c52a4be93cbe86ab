package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	apperrors "voiceclone/internal/errors"
	"voiceclone/internal/handler"
	"voiceclone/internal/service"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth  *handler.AuthHandler
	User  *handler.UserHandler
	Voice *handler.VoiceHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, authService service.AuthService, h Handlers, logger *zap.Logger) {
	e.HideBanner = true
	e.HTTPErrorHandler = NewErrorHandler(logger)
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")
	bearer := BearerAuth(authService)

	users := api.Group("/users")
	users.POST("/signup", h.Auth.Signup)
	users.POST("/token", h.Auth.Login)
	users.GET("/me", h.User.Me, bearer)

	tts := api.Group("/clone-tts", bearer)
	tts.GET("/list-models", h.Voice.ListModels)
	tts.POST("/create-model", h.Voice.CreateModel)
	tts.POST("/text-to-speech", h.Voice.TextToSpeech)
}

// BearerAuth validates the Authorization header and stores the caller's
// identity in the request context.
func BearerAuth(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.IdentityContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Authenticate(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Detail: apperrors.ErrUnauthorized.Error(),
				Code:   "UNAUTHORIZED",
			}).SetInternal(err)
		},
	})
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				logger.Error("request", fields...)
			case v.Status >= http.StatusBadRequest:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
