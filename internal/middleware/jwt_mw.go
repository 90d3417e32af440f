package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"billing_api/internal/metrics"
	"billing_api/internal/model"
	"billing_api/internal/repository"
	"billing_api/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthUserKey holds the authenticated user id in the gin context for logging
const AuthUserKey = "authUserID"

// unauthenticatedMessage is the only thing a rejected caller learns
const unauthenticatedMessage = "Please authenticate"

type contextKey string

const userContextKey contextKey = "authUser"

// UserResolver maps a token's user id back to a live account
type UserResolver interface {
	Lookup(ctx context.Context, userID string) (*model.User, error)
}

// WithUser returns a copy of ctx carrying the authenticated user
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user attached by JWTAuthMiddleware
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok && user != nil
}

// JWTAuthMiddleware rejects requests without a valid bearer token for an
// existing user and attaches that user to the request context.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil, users UserResolver, logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	reject := func(c *gin.Context, reason string, err error) {
		logger.Debug("request rejected by auth guard",
			zap.String("reason", reason),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(err),
		)
		m.AuthEvent("guard", reason)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthenticatedMessage})
	}

	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			reject(c, "malformed_header", nil)
			return
		}

		userID, err := jwtUtil.Verify(tokenString)
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, utils.ErrTokenExpired) {
				reason = "expired_token"
			}
			reject(c, reason, err)
			return
		}

		user, err := users.Lookup(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrInvalidID) {
				reject(c, "invalid_subject", err)
				return
			}
			logger.Error("failed to resolve token subject", zap.String("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		if user == nil {
			reject(c, "unknown_user", nil)
			return
		}

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
		c.Set(AuthUserKey, user.ID)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
