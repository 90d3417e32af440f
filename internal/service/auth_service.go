package service

import (
	"context"
	"fmt"

	"billing_api/internal/model"
	"billing_api/internal/utils"

	"go.uber.org/zap"
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

type authService struct {
	credentials *CredentialStore
	jwtUtil     *utils.JWTUtil
	logger      *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(credentials *CredentialStore, jwtUtil *utils.JWTUtil, logger *zap.Logger) AuthService {
	return &authService{
		credentials: credentials,
		jwtUtil:     jwtUtil,
		logger:      logger,
	}
}

// Register creates a new user account and returns a session token for it
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	user, err := s.credentials.Register(ctx, name, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtUtil.Issue(user.ID)
	if err != nil {
		s.logger.Error("user created, but failed to generate token", zap.String("user_id", user.ID), zap.Error(err))
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a session token
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.credentials.Verify(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtUtil.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}
