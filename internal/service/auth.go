package service

import (
	"context"
	"log/slog"

	"github.com/way-19/consulting19/internal/domain"
	apperrors "github.com/way-19/consulting19/pkg/errors"
)

// Authenticator is the external identity provider.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string, profile domain.UserProfile) (*domain.Session, error)
}

// AuthService validates the sign-in and registration forms and delegates
// to the identity provider.
type AuthService struct {
	provider    Authenticator
	redirectURL string
	logger      *slog.Logger
}

// NewAuthService creates a new auth service. redirectURL is where the
// client goes after a successful sign-in or sign-up.
func NewAuthService(provider Authenticator, redirectURL string, logger *slog.Logger) *AuthService {
	return &AuthService{
		provider:    provider,
		redirectURL: redirectURL,
		logger:      logger,
	}
}

// SignIn authenticates with email and password.
func (s *AuthService) SignIn(ctx context.Context, in domain.SignInInput) (*domain.AuthResult, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return nil, apperrors.Validation("sign-in form is invalid", errs)
	}

	session, err := s.provider.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user signed in", slog.String("user_id", session.UserID))
	return &domain.AuthResult{Session: *session, RedirectURL: s.redirectURL}, nil
}

// SignUp registers a new client account.
func (s *AuthService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.AuthResult, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return nil, apperrors.Validation("registration form is invalid", errs)
	}

	session, err := s.provider.SignUp(ctx, in.Email, in.Password, in.Profile())
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", session.UserID),
		slog.Bool("confirmation_required", session.ConfirmationRequired),
	)

	result := &domain.AuthResult{Session: *session}
	if !session.ConfirmationRequired {
		result.RedirectURL = s.redirectURL
	}
	return result, nil
}
