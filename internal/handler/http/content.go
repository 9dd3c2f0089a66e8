package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/internal/service"
	"github.com/way-19/consulting19/pkg/httputil"
	"github.com/way-19/consulting19/pkg/pagination"
)

// ContentHandler serves catalog, country, blog and static page content.
type ContentHandler struct {
	content   *service.ContentService
	languages *service.LanguageService
	logger    *slog.Logger
}

// NewContentHandler creates a new content HTTP handler.
func NewContentHandler(content *service.ContentService, languages *service.LanguageService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		content:   content,
		languages: languages,
		logger:    logger,
	}
}

// ListServices handles GET /api/v1/services
func (h *ContentHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.content.Services())
}

// ListCountries handles GET /api/v1/countries
func (h *ContentHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.content.Countries())
}

// GetCountry handles GET /api/v1/countries/{code}
func (h *ContentHandler) GetCountry(w http.ResponseWriter, r *http.Request) {
	c, err := h.content.Country(chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, c)
}

// ListCountryPackages handles GET /api/v1/countries/{code}/packages
func (h *ContentHandler) ListCountryPackages(w http.ResponseWriter, r *http.Request) {
	c, err := h.content.Country(chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	packages := c.Packages
	if packages == nil {
		packages = []domain.CountryPackage{}
	}
	httputil.WriteData(w, http.StatusOK, packages)
}

// ListBlog handles GET /api/v1/blog
func (h *ContentHandler) ListBlog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.BlogFilter{
		CountryCode: q.Get("country"),
		Language:    q.Get("language"),
		Category:    q.Get("category"),
		Tag:         q.Get("tag"),
	}

	result, err := h.content.ListBlog(r.Context(), filter, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	// The pagination result is itself the envelope.
	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetBlogPost handles GET /api/v1/blog/{slug}
func (h *ContentHandler) GetBlogPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.content.BlogPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// GetPage handles GET /api/v1/pages/{page} in the visitor's language.
func (h *ContentHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	lang := h.languages.Current(r.Context(), visitorIDFromContext(r.Context()))
	p, err := h.content.Page(lang, chi.URLParam(r, "page"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}
