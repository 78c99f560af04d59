package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"fireforce-invoice-api/internal/middleware"
)

// authService implements the AuthService interface
type authService struct {
	data     DataService
	tokens   *middleware.TokenService
	logger   *logrus.Logger
	validate *validator.Validate
}

// NewAuthService creates a new authentication service
func NewAuthService(data DataService, tokens *middleware.TokenService, logger *logrus.Logger) AuthService {
	if logger == nil {
		logger = logrus.New()
	}
	return &authService{
		data:     data,
		tokens:   tokens,
		logger:   logger,
		validate: validator.New(),
	}
}

// Login verifies credentials and returns the user with a signed token.
// Unknown usernames and wrong passwords produce the same error so the
// response does not leak which usernames exist.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	if req == nil {
		return nil, fmt.Errorf("login request cannot be nil")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.data.ActiveStore().Users().GetByUsername(ctx, req.Username)
	if err != nil {
		s.logger.WithField("username", req.Username).Warn("Login attempt for unknown username")
		return nil, fmt.Errorf("invalid username or password")
	}

	if !user.CheckPassword(req.Password) {
		s.logger.WithField("username", req.Username).Warn("Login attempt with wrong password")
		return nil, fmt.Errorf("invalid username or password")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Username, user.Name, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"username": user.Username,
		"role":     user.Role,
	}).Info("User logged in")

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Redacted(),
	}, nil
}
