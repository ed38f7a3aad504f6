package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

const (
	msgRegistered         = "User registered successfully"
	msgInvalidCredentials = "Invalid credentials"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register creates a new user.
func (h *AuthHandler) Register(c *gin.Context) {
	req := bindBody[dto.RegisterRequest](c)

	_, err := h.authService.Register(services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{Message: msgRegistered})
}

// Login authenticates a user and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	req := bindBody[dto.LoginRequest](c)

	token, user, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: token,
		User:        dto.ToUserDTO(*user),
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c)
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.RespondWithError(c, apierrors.NewAPIError(http.StatusUnauthorized, msgInvalidCredentials))
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c)
	default:
		respondServiceError(c, h.logger, err)
	}
}
