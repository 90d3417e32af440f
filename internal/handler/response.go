package handler

import (
	"errors"
	"net/http"

	"billing_api/internal/middleware"
	"billing_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const serverErrorMessage = "Server error"

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(service.JSONTagName)
	}
}

// respondError translates a core error into its HTTP status and a client-safe body.
// Anything unrecognised is logged and answered with a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": verr.Fields})
	case errors.Is(err, service.ErrDuplicateUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, service.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bill ID"})
	case errors.Is(err, service.ErrBillNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Bill not found"})
	default:
		_ = c.Error(err)
		logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": serverErrorMessage})
	}
}

// bindJSON decodes the request body, answering 400 on failure
func bindJSON(c *gin.Context, logger *zap.Logger, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, logger, service.NewValidationError(err))
		return false
	}
	return true
}
