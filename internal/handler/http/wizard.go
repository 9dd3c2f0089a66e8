package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/way-19/consulting19/internal/service"
	"github.com/way-19/consulting19/pkg/httputil"
)

// WizardHandler handles HTTP requests for the order wizard.
type WizardHandler struct {
	orders    *service.OrderService
	languages *service.LanguageService
	logger    *slog.Logger
}

// NewWizardHandler creates a new wizard HTTP handler.
func NewWizardHandler(orders *service.OrderService, languages *service.LanguageService, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{
		orders:    orders,
		languages: languages,
		logger:    logger,
	}
}

// --- Request DTOs ---

// StartWizardRequest is the optional JSON body of POST /wizard.
type StartWizardRequest struct {
	Variant string `json:"variant" validate:"omitempty,oneof=standard banking express"`
}

// UpdateFieldsRequest sets one or more form fields by their JSON name.
type UpdateFieldsRequest struct {
	Fields map[string]any `json:"fields" validate:"required,min=1"`
}

// --- Handlers ---

// Start handles POST /api/v1/wizard
func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartWizardRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	view, err := h.orders.Start(r.Context(), visitorIDFromContext(r.Context()), req.Variant)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, view)
}

// Get handles GET /api/v1/wizard/{id}
func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.orders.Get(r.Context(), visitorIDFromContext(r.Context()), id))
}

// UpdateFields handles PATCH /api/v1/wizard/{id}/fields
func (h *WizardHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	id, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	var req UpdateFieldsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.respond(w, r)(h.orders.UpdateFields(r.Context(), visitorIDFromContext(r.Context()), id, req.Fields))
}

// ToggleService handles POST /api/v1/wizard/{id}/services/{serviceID}/toggle
func (h *WizardHandler) ToggleService(w http.ResponseWriter, r *http.Request) {
	id, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	serviceID := chi.URLParam(r, "serviceID")
	h.respond(w, r)(h.orders.ToggleService(r.Context(), visitorIDFromContext(r.Context()), id, serviceID))
}

// Next handles POST /api/v1/wizard/{id}/next
func (h *WizardHandler) Next(w http.ResponseWriter, r *http.Request) {
	id, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.orders.Next(r.Context(), visitorIDFromContext(r.Context()), id))
}

// Previous handles POST /api/v1/wizard/{id}/previous
func (h *WizardHandler) Previous(w http.ResponseWriter, r *http.Request) {
	id, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.orders.Previous(r.Context(), visitorIDFromContext(r.Context()), id))
}

// GoTo handles POST /api/v1/wizard/{id}/steps/{step}
func (h *WizardHandler) GoTo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	raw := chi.URLParam(r, "step")
	step, err := strconv.Atoi(raw)
	if err != nil {
		writeInvalidParam(w, "step", raw)
		return
	}
	h.respond(w, r)(h.orders.GoTo(r.Context(), visitorIDFromContext(r.Context()), id, step))
}

// Submit handles POST /api/v1/wizard/{id}/submit. A backend failure is not
// an HTTP error: the wizard comes back in the failure state with a message.
func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.wizardID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	visitorID := visitorIDFromContext(ctx)
	lang := h.languages.Current(ctx, visitorID)

	h.respond(w, r)(h.orders.Submit(ctx, visitorID, id, string(lang)))
}

// --- Helpers ---

func (h *WizardHandler) wizardID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return "", false
	}
	return id.String(), true
}

// respond writes the view, or the error when there is one. Validation
// errors carry the field map; the draft with its recorded errors is
// available through GET.
func (h *WizardHandler) respond(w http.ResponseWriter, r *http.Request) func(*service.WizardView, error) {
	return func(view *service.WizardView, err error) {
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteData(w, http.StatusOK, view)
	}
}
