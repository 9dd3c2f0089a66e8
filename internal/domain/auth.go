package domain

import (
	"errors"
	"strings"
)

// SignInInput is the login form.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate returns per-field errors, empty when the form is valid.
func (in *SignInInput) Validate() FieldErrors {
	in.Email = strings.TrimSpace(in.Email)
	return structErrors(in)
}

// SignUpInput is the registration form.
type SignUpInput struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	FullName        string `json:"fullName" validate:"required,min=2"`
	Company         string `json:"company" validate:"omitempty,max=200"`
	AcceptTerms     bool   `json:"acceptTerms"`
}

// Validate returns per-field errors, empty when the form is valid.
func (in *SignUpInput) Validate() FieldErrors {
	in.Email = strings.TrimSpace(in.Email)
	errs := FieldErrors{}
	errs.Merge(structErrors(in))
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		errs.Add("confirmPassword", "passwords do not match")
	}
	if !in.AcceptTerms {
		errs.Add("acceptTerms", "you must accept the terms and conditions")
	}
	return errs
}

// Profile is the user metadata sent along with a registration.
func (in *SignUpInput) Profile() UserProfile {
	return UserProfile{FullName: in.FullName, Company: in.Company, Role: "client"}
}

// UserProfile is attached to a new account at the auth provider.
type UserProfile struct {
	FullName string `json:"full_name"`
	Company  string `json:"company,omitempty"`
	Role     string `json:"role"`
}

// Session is what a successful sign-in or sign-up yields.
type Session struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`

	// ConfirmationRequired is set when the provider created the account but
	// expects the address to be confirmed before a session is issued.
	ConfirmationRequired bool `json:"confirmation_required,omitempty"`
}

// ErrInvalidCredentials is returned by authenticators for a rejected login.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// AuthResult is returned to the client after a successful auth call.
type AuthResult struct {
	Session     Session `json:"session"`
	RedirectURL string  `json:"redirect_url"`
}
