package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/way-19/consulting19/internal/domain"
	apperrors "github.com/way-19/consulting19/pkg/errors"
	"github.com/way-19/consulting19/pkg/httpclient"
)

const providerService = "auth-provider"

// ProviderClient talks to a Supabase (GoTrue) compatible auth REST API.
type ProviderClient struct {
	client  httpclient.Doer
	baseURL string
	apiKey  string
}

// NewProviderClient creates a client for the auth API at baseURL. client is
// normally an httpclient.CircuitBreakerClient.
func NewProviderClient(client httpclient.Doer, baseURL, apiKey string) *ProviderClient {
	return &ProviderClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type providerUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type providerSession struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         providerUser `json:"user"`

	// Sign-up without auto-confirm answers with the bare user object.
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s providerSession) toDomain() *domain.Session {
	out := &domain.Session{
		UserID:       s.User.ID,
		Email:        s.User.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
	}
	if out.UserID == "" {
		out.UserID = s.ID
	}
	if out.Email == "" {
		out.Email = s.Email
	}
	out.ConfirmationRequired = out.AccessToken == ""
	return out
}

// SignIn exchanges email and password for a session.
func (c *ProviderClient) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	req, err := c.newRequest(ctx, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var resp providerSession
	if err := httpclient.DoJSON(ctx, c.client, req, providerService, &resp); err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) || errors.Is(err, apperrors.ErrUnauthorized) {
			return nil, apperrors.Unauthorized(domain.ErrInvalidCredentials.Error())
		}
		return nil, c.upstreamError("sign in", err)
	}
	return resp.toDomain(), nil
}

// SignUp registers a new account carrying profile as user metadata.
func (c *ProviderClient) SignUp(ctx context.Context, email, password string, profile domain.UserProfile) (*domain.Session, error) {
	req, err := c.newRequest(ctx, "/auth/v1/signup", map[string]any{
		"email":    email,
		"password": password,
		"data":     profile,
	})
	if err != nil {
		return nil, err
	}

	var resp providerSession
	if err := httpclient.DoJSON(ctx, c.client, req, providerService, &resp); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperrors.ErrInvalidInput) &&
			strings.Contains(strings.ToLower(appErr.Message), "already registered") {
			return nil, apperrors.Conflict(appErr.Message)
		}
		return nil, c.upstreamError("sign up", err)
	}
	return resp.toDomain(), nil
}

func (c *ProviderClient) newRequest(ctx context.Context, path string, payload any) (*http.Request, error) {
	req, err := httpclient.NewJSONRequest(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return req, nil
}

func (c *ProviderClient) upstreamError(op string, err error) error {
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		return apperrors.ServiceUnavailable("authentication is temporarily unavailable")
	}
	if ue, ok := httpclient.AsUpstreamError(err); ok {
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s is unavailable (status %d)", providerService, ue.Status))
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
