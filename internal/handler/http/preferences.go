package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/internal/i18n"
	"github.com/way-19/consulting19/internal/service"
	"github.com/way-19/consulting19/pkg/httputil"
)

// PreferenceHandler handles the visitor's language and cookie consent.
type PreferenceHandler struct {
	languages *service.LanguageService
	consent   *service.ConsentService
	logger    *slog.Logger
}

// NewPreferenceHandler creates a new preference HTTP handler.
func NewPreferenceHandler(languages *service.LanguageService, consent *service.ConsentService, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		languages: languages,
		consent:   consent,
		logger:    logger,
	}
}

// --- Request DTOs ---

// SetLanguageRequest is the JSON body of PUT /language.
type SetLanguageRequest struct {
	Language string `json:"language" validate:"required"`
}

// SetConsentRequest is the JSON body of PUT /consent. Necessary cookies
// cannot be switched off and are not part of the request.
type SetConsentRequest struct {
	Functional bool `json:"functional"`
	Analytics  bool `json:"analytics"`
	Marketing  bool `json:"marketing"`
}

// --- Response DTOs ---

// LanguageResponse is the active language and every supported one.
type LanguageResponse struct {
	Language  i18n.Language   `json:"language"`
	Supported []i18n.Language `json:"supported"`
}

// TranslationsResponse maps requested keys to their translation.
type TranslationsResponse struct {
	Language     i18n.Language     `json:"language"`
	Translations map[string]string `json:"translations"`
}

// --- Handlers ---

// GetLanguage handles GET /api/v1/language
func (h *PreferenceHandler) GetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := h.languages.Current(r.Context(), visitorIDFromContext(r.Context()))
	httputil.WriteData(w, http.StatusOK, LanguageResponse{Language: lang, Supported: i18n.Supported()})
}

// SetLanguage handles PUT /api/v1/language
func (h *PreferenceHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req SetLanguageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lang, err := h.languages.SetLanguage(r.Context(), visitorIDFromContext(r.Context()), req.Language)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, LanguageResponse{Language: lang, Supported: i18n.Supported()})
}

// Translate handles GET /api/v1/translations?keys=a,b
func (h *PreferenceHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var keys []string
	for _, k := range strings.Split(r.URL.Query().Get("keys"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		writeInvalidParam(w, "keys", r.URL.Query().Get("keys"))
		return
	}

	lang, translations := h.languages.Translate(r.Context(), visitorIDFromContext(r.Context()), keys)
	httputil.WriteData(w, http.StatusOK, TranslationsResponse{Language: lang, Translations: translations})
}

// GetConsent handles GET /api/v1/consent
func (h *PreferenceHandler) GetConsent(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.consent.Get(r.Context(), visitorIDFromContext(r.Context())))
}

// SetConsent handles PUT /api/v1/consent
func (h *PreferenceHandler) SetConsent(w http.ResponseWriter, r *http.Request) {
	var req SetConsentRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	h.writeConsent(w, r)(h.consent.Set(r.Context(), visitorIDFromContext(r.Context()), req.Functional, req.Analytics, req.Marketing))
}

// AcceptAllConsent handles POST /api/v1/consent/accept-all
func (h *PreferenceHandler) AcceptAllConsent(w http.ResponseWriter, r *http.Request) {
	h.writeConsent(w, r)(h.consent.AcceptAll(r.Context(), visitorIDFromContext(r.Context())))
}

// RejectAllConsent handles POST /api/v1/consent/reject-all
func (h *PreferenceHandler) RejectAllConsent(w http.ResponseWriter, r *http.Request) {
	h.writeConsent(w, r)(h.consent.RejectAll(r.Context(), visitorIDFromContext(r.Context())))
}

// ToggleConsent handles POST /api/v1/consent/{category}/toggle
func (h *PreferenceHandler) ToggleConsent(w http.ResponseWriter, r *http.Request) {
	category := domain.CookieCategory(chi.URLParam(r, "category"))
	h.writeConsent(w, r)(h.consent.Toggle(r.Context(), visitorIDFromContext(r.Context()), category))
}

func (h *PreferenceHandler) writeConsent(w http.ResponseWriter, r *http.Request) func(domain.CookieConsent, error) {
	return func(c domain.CookieConsent, err error) {
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteData(w, http.StatusOK, c)
	}
}
