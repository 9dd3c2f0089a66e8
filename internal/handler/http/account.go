package http

import (
	"log/slog"
	"net/http"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/internal/service"
	"github.com/way-19/consulting19/pkg/httputil"
)

// AccountHandler handles the sign-in and registration page and the contact
// form.
type AccountHandler struct {
	auth      *service.AuthService
	leads     *service.LeadService
	languages *service.LanguageService
	logger    *slog.Logger
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(auth *service.AuthService, leads *service.LeadService, languages *service.LanguageService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		auth:      auth,
		leads:     leads,
		languages: languages,
		logger:    logger,
	}
}

// SignIn handles POST /api/v1/auth/sign-in
func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var in domain.SignInInput
	if !decodeJSON(w, r, &in, false) {
		return
	}

	res, err := h.auth.SignIn(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// SignUp handles POST /api/v1/auth/sign-up
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var in domain.SignUpInput
	if !decodeJSON(w, r, &in, false) {
		return
	}

	res, err := h.auth.SignUp(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, res)
}

// Contact handles POST /api/v1/contact
func (h *AccountHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var in domain.ContactLead
	if !decodeJSON(w, r, &in, false) {
		return
	}

	ctx := r.Context()
	visitorID := visitorIDFromContext(ctx)
	lang := h.languages.Current(ctx, visitorID)

	lead, err := h.leads.Create(ctx, visitorID, string(lang), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, lead)
}
