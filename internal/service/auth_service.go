package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// AuthService wraps registration and login, pairing the authenticator with
// session token issuance.
type AuthService struct {
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
	store         storage.Store
}

// NewAuthService creates a new AuthService.
func NewAuthService(authenticator auth.Authenticator, tokens *auth.JWTManager, store storage.Store) *AuthService {
	return &AuthService{authenticator: authenticator, tokens: tokens, store: store}
}

// Register creates an account and returns the user with a signed session
// token.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", validationErr("email is required")
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, "", validationErr("display name is required")
	}

	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	slog.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and returns the user with a signed session
// token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	slog.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// CurrentUser loads the account behind a caller id.
func (s *AuthService) CurrentUser(ctx context.Context, callerID string) (*models.User, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	user, err := s.store.GetUserByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}
