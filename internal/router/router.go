package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"notehub/internal/auth"
	"notehub/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	noteHandler *handler.NoteHandler,
	fileHandler *handler.FileHandler,
	transcribeHandler *handler.TranscribeHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	// Secured routes (session via Authorization header or auth_token cookie)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ContextKey:  auth.ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + auth.CookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token)
		},
	}))

	secured.GET("/me", func(c echo.Context) error {
		ident, err := auth.FromContext(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		return c.JSON(http.StatusOK, echo.Map{"user_id": ident.UserID, "email": ident.Email})
	})

	// Note routes
	secured.POST("/notes", noteHandler.CreateNote)
	secured.GET("/notes", noteHandler.ListNotes)
	secured.GET("/notes/:id", noteHandler.GetNote)
	secured.PUT("/notes/:id", noteHandler.UpdateNote)
	secured.DELETE("/notes/:id", noteHandler.DeleteNote)

	// File routes
	secured.POST("/upload", fileHandler.Upload)
	secured.GET("/files/:fileId", fileHandler.GetFile)

	// Transcription routes
	secured.POST("/transcribe", transcribeHandler.Submit)
	secured.GET("/transcribe", transcribeHandler.Status)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
