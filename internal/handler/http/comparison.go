package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/way-19/consulting19/internal/service"
	"github.com/way-19/consulting19/pkg/httputil"
)

// ComparisonHandler handles the package comparison widget.
type ComparisonHandler struct {
	service *service.ComparisonService
	logger  *slog.Logger
}

// NewComparisonHandler creates a new comparison HTTP handler.
func NewComparisonHandler(svc *service.ComparisonService, logger *slog.Logger) *ComparisonHandler {
	return &ComparisonHandler{
		service: svc,
		logger:  logger,
	}
}

// Get handles GET /api/v1/comparison/{country}
func (h *ComparisonHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), visitorIDFromContext(r.Context()), chi.URLParam(r, "country"))
	h.write(w, r, v, err)
}

// Toggle handles POST /api/v1/comparison/{country}/{packageID}/toggle
func (h *ComparisonHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Toggle(r.Context(), visitorIDFromContext(r.Context()),
		chi.URLParam(r, "country"), chi.URLParam(r, "packageID"))
	h.write(w, r, v, err)
}

// EnterView handles POST /api/v1/comparison/{country}/view
func (h *ComparisonHandler) EnterView(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.EnterView(r.Context(), visitorIDFromContext(r.Context()), chi.URLParam(r, "country"))
	h.write(w, r, v, err)
}

// ExitView handles DELETE /api/v1/comparison/{country}/view
func (h *ComparisonHandler) ExitView(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.ExitView(r.Context(), visitorIDFromContext(r.Context()), chi.URLParam(r, "country"))
	h.write(w, r, v, err)
}

func (h *ComparisonHandler) write(w http.ResponseWriter, r *http.Request, v *service.ComparisonView, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, v)
}
