package handler

import (
	"errors"
	"net/http"

	"billing_api/internal/metrics"
	"billing_api/internal/model"
	"billing_api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, logger *zap.Logger, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{service: s, logger: logger, metrics: m}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !bindJSON(c, h.logger, &req) {
		h.metrics.AuthEvent("register", "invalid")
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUser) {
			h.metrics.AuthEvent("register", "duplicate")
		} else {
			h.metrics.AuthEvent("register", "error")
		}
		respondError(c, h.logger, err)
		return
	}

	h.metrics.AuthEvent("register", "success")
	h.logger.Info("user registered", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, h.logger, &req) {
		h.metrics.AuthEvent("login", "invalid")
		return
	}

	_, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.metrics.AuthEvent("login", "failure")
		} else {
			h.metrics.AuthEvent("login", "error")
		}
		respondError(c, h.logger, err)
		return
	}

	h.metrics.AuthEvent("login", "success")
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}
