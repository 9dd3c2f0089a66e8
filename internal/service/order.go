package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/internal/repository"
	"github.com/way-19/consulting19/internal/submission"
	apperrors "github.com/way-19/consulting19/pkg/errors"
)

const (
	msgSubmitTimeout    = "submission timed out, please try again"
	msgSubmitFailed     = "submission failed, please try again"
	msgSubmitIncomplete = "previous submission did not complete, please try again"
)

// defaultLockTTL bounds the submit lock when no submit timeout is configured.
const defaultLockTTL = 2 * time.Minute

// OrderConfig tunes the wizard service.
type OrderConfig struct {
	// SubmitTimeout bounds a submission; 0 disables the bound.
	SubmitTimeout time.Duration
	// RedirectURL is handed to the client after a successful submission.
	RedirectURL string
}

// OrderService drives order wizards: drafts, step navigation and
// submission.
type OrderService struct {
	drafts    repository.WizardRepository
	lock      repository.SubmitLock
	submitter submission.Submitter
	catalog   *domain.Catalog
	cfg       OrderConfig
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrderService creates a new order wizard service. metrics may be nil.
func NewOrderService(
	drafts repository.WizardRepository,
	lock repository.SubmitLock,
	submitter submission.Submitter,
	catalog *domain.Catalog,
	cfg OrderConfig,
	metrics *Metrics,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		drafts:    drafts,
		lock:      lock,
		submitter: submitter,
		catalog:   catalog,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WizardView is the client-facing state of a wizard including the derived
// values (step overview, total price, selected service details).
type WizardView struct {
	ID               string                   `json:"id"`
	Variant          domain.Variant           `json:"variant"`
	Status           domain.Status            `json:"status"`
	CurrentStep      int                      `json:"current_step"`
	TotalSteps       int                      `json:"total_steps"`
	Steps            []domain.StepInfo        `json:"steps"`
	Form             domain.OrderForm         `json:"form"`
	Errors           domain.FieldErrors       `json:"errors,omitempty"`
	SubmitError      string                   `json:"submit_error,omitempty"`
	Receipt          *domain.Receipt          `json:"receipt,omitempty"`
	TotalPrice       int64                    `json:"total_price"`
	SelectedServices []domain.ServiceOffering `json:"selected_services"`
	Version          int                      `json:"version"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

func (s *OrderService) view(w *domain.Wizard, now time.Time) *WizardView {
	form := w.Form
	if form.SelectedServiceIDs == nil {
		form.SelectedServiceIDs = []string{}
	}
	return &WizardView{
		ID:               w.ID,
		Variant:          w.Variant,
		Status:           w.Status,
		CurrentStep:      w.CurrentStep,
		TotalSteps:       w.TotalSteps(),
		Steps:            w.StepInfos(s.catalog, now),
		Form:             form,
		Errors:           w.Errors.Clone(),
		SubmitError:      w.SubmitError,
		Receipt:          w.Receipt,
		TotalPrice:       w.Form.TotalPrice(s.catalog),
		SelectedServices: w.Form.SelectedServiceDetails(s.catalog),
		Version:          w.Version,
		UpdatedAt:        w.UpdatedAt,
	}
}

// Start creates a new wizard draft for the visitor.
func (s *OrderService) Start(ctx context.Context, visitorID, variant string) (*WizardView, error) {
	v, err := domain.ParseVariant(variant)
	if err != nil {
		return nil, mapDomainError(err)
	}

	now := s.now()
	w := domain.NewWizard(uuid.New().String(), visitorID, v, now)

	ok, err := s.drafts.SaveIfVersion(ctx, w, 0)
	if err != nil {
		return nil, fmt.Errorf("save wizard: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("wizard already exists")
	}

	s.metrics.transition(string(v), "start", "ok")
	s.logger.InfoContext(ctx, "wizard started",
		slog.String("wizard_id", w.ID),
		slog.String("variant", string(v)),
	)

	return s.view(w, now), nil
}

// Get returns the current state of a wizard. A wizard left in the
// submitting state by a crashed or abandoned submission is moved to the
// failure state so it can be retried.
func (s *OrderService) Get(ctx context.Context, visitorID, id string) (*WizardView, error) {
	w, err := s.load(ctx, visitorID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if w.Status == domain.StatusSubmitting {
		if err := s.recoverStale(ctx, w, now); err != nil {
			return nil, err
		}
	}
	return s.view(w, now), nil
}

// UpdateFields sets one or more form fields. Values are not validated
// beyond their type; unknown field names are rejected before anything is
// changed.
func (s *OrderService) UpdateFields(ctx context.Context, visitorID, id string, fields map[string]any) (*WizardView, error) {
	if len(fields) == 0 {
		return nil, apperrors.InvalidInput("no fields to update")
	}
	return s.mutate(ctx, visitorID, id, "update_fields", func(w *domain.Wizard, now time.Time) error {
		for name, value := range fields {
			if err := w.UpdateField(s.catalog, name, value, now); err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
		}
		return nil
	})
}

// ToggleService adds or removes a catalog service from the selection.
func (s *OrderService) ToggleService(ctx context.Context, visitorID, id, serviceID string) (*WizardView, error) {
	return s.mutate(ctx, visitorID, id, "toggle_service", func(w *domain.Wizard, now time.Time) error {
		_, err := w.ToggleService(s.catalog, serviceID, now)
		return err
	})
}

// Next validates the current step and advances. When the step is
// incomplete the recorded errors are saved and a validation error carrying
// them is returned.
func (s *OrderService) Next(ctx context.Context, visitorID, id string) (*WizardView, error) {
	var fieldErrs domain.FieldErrors
	view, err := s.mutate(ctx, visitorID, id, "next", func(w *domain.Wizard, now time.Time) error {
		errs, err := w.Next(s.catalog, now)
		fieldErrs = errs
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(fieldErrs) > 0 {
		return view, apperrors.Validation("step is incomplete", fieldErrs)
	}
	return view, nil
}

// Previous moves back one step.
func (s *OrderService) Previous(ctx context.Context, visitorID, id string) (*WizardView, error) {
	return s.mutate(ctx, visitorID, id, "previous", func(w *domain.Wizard, now time.Time) error {
		return w.Previous(now)
	})
}

// GoTo jumps to step n when every earlier step is complete.
func (s *OrderService) GoTo(ctx context.Context, visitorID, id string, n int) (*WizardView, error) {
	return s.mutate(ctx, visitorID, id, "goto", func(w *domain.Wizard, now time.Time) error {
		return w.GoTo(n, s.catalog, now)
	})
}

// Submit validates the whole wizard and hands the order to the submission
// backend. Backend failures leave the wizard in the failure state with a
// message and are not returned as errors; the caller inspects the view.
func (s *OrderService) Submit(ctx context.Context, visitorID, id, language string) (*WizardView, error) {
	w, err := s.load(ctx, visitorID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	variant := string(w.Variant)

	// A completed order answers with its original receipt.
	if w.Status == domain.StatusSuccess {
		s.metrics.transition(variant, "submit", "already_submitted")
		return s.view(w, now), nil
	}

	if w.Status == domain.StatusSubmitting {
		if err := s.recoverStale(ctx, w, now); err != nil {
			return nil, err
		}
		if w.Status == domain.StatusSubmitting {
			s.metrics.transition(variant, "submit", "in_progress")
			return nil, mapDomainError(domain.ErrSubmitInProgress)
		}
	}

	token, acquired, err := s.lock.Acquire(ctx, w.ID, s.lockTTL())
	if err != nil {
		return nil, fmt.Errorf("acquire submit lock: %w", err)
	}
	if !acquired {
		s.metrics.transition(variant, "submit", "in_progress")
		return nil, mapDomainError(domain.ErrSubmitInProgress)
	}
	defer func() {
		// The request context may already be done; release regardless.
		if err := s.lock.Release(context.WithoutCancel(ctx), w.ID, token); err != nil {
			s.logger.WarnContext(ctx, "failed to release submit lock",
				slog.String("wizard_id", w.ID),
				slog.String("error", err.Error()),
			)
		}
	}()

	expected := w.Version
	fieldErrs, err := w.BeginSubmit(s.catalog, now)
	if err != nil {
		s.metrics.transition(variant, "submit", "rejected")
		return nil, mapDomainError(err)
	}
	if err := s.save(ctx, w, expected); err != nil {
		return nil, err
	}
	if len(fieldErrs) > 0 {
		s.metrics.transition(variant, "submit", "invalid")
		return s.view(w, now), apperrors.Validation("order is incomplete", fieldErrs)
	}

	order := domain.NewServiceOrder(uuid.New().String(), w, s.catalog, language, now)

	submitCtx := ctx
	if s.cfg.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		submitCtx, cancel = context.WithTimeout(ctx, s.cfg.SubmitTimeout)
		defer cancel()
	}

	start := time.Now()
	result, submitErr := s.submitter.Submit(submitCtx, order)
	elapsed := time.Since(start)

	// Persist the outcome even if the client went away.
	persistCtx := context.WithoutCancel(ctx)
	now = s.now()
	expected = w.Version

	if submitErr != nil {
		msg := s.failureMessage(submitCtx, submitErr)
		s.logger.ErrorContext(ctx, "order submission failed",
			slog.String("wizard_id", w.ID),
			slog.String("backend", s.submitter.Name()),
			slog.String("error", submitErr.Error()),
		)
		s.metrics.submission(variant, s.submitter.Name(), "failure", elapsed)
		if err := w.FailSubmit(msg, now); err != nil {
			return nil, err
		}
		if err := s.save(persistCtx, w, expected); err != nil {
			return nil, err
		}
		return s.view(w, now), nil
	}

	receipt := domain.Receipt{
		Reference:   result.Reference,
		RedirectURL: s.cfg.RedirectURL,
		SubmittedAt: now,
	}
	if err := w.CompleteSubmit(receipt, now); err != nil {
		return nil, err
	}
	if err := s.save(persistCtx, w, expected); err != nil {
		return nil, err
	}

	s.metrics.submission(variant, s.submitter.Name(), "success", elapsed)
	s.logger.InfoContext(ctx, "order submitted",
		slog.String("wizard_id", w.ID),
		slog.String("reference", result.Reference),
		slog.String("backend", s.submitter.Name()),
		slog.Int64("total_price", order.TotalPrice),
	)

	return s.view(w, now), nil
}

func (s *OrderService) lockTTL() time.Duration {
	if s.cfg.SubmitTimeout > 0 {
		return s.cfg.SubmitTimeout + 10*time.Second
	}
	return defaultLockTTL
}

func (s *OrderService) failureMessage(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return msgSubmitTimeout
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status < 500 {
		return appErr.Message
	}
	return msgSubmitFailed
}

// recoverStale moves a submitting wizard whose lock has lapsed to failure.
func (s *OrderService) recoverStale(ctx context.Context, w *domain.Wizard, now time.Time) error {
	held, err := s.lock.Held(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("check submit lock: %w", err)
	}
	if held {
		return nil
	}

	expected := w.Version
	if err := w.FailSubmit(msgSubmitIncomplete, now); err != nil {
		return err
	}
	if err := s.save(ctx, w, expected); err != nil {
		return err
	}
	s.logger.WarnContext(ctx, "recovered abandoned submission", slog.String("wizard_id", w.ID))
	return nil
}

// mutate loads a wizard, applies fn and saves it with an optimistic
// version check.
func (s *OrderService) mutate(ctx context.Context, visitorID, id, operation string, fn func(w *domain.Wizard, now time.Time) error) (*WizardView, error) {
	w, err := s.load(ctx, visitorID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	expected := w.Version

	if err := fn(w, now); err != nil {
		s.metrics.transition(string(w.Variant), operation, "rejected")
		return nil, mapDomainError(err)
	}
	if err := s.save(ctx, w, expected); err != nil {
		return nil, err
	}

	s.metrics.transition(string(w.Variant), operation, "ok")
	return s.view(w, now), nil
}

func (s *OrderService) load(ctx context.Context, visitorID, id string) (*domain.Wizard, error) {
	w, err := s.drafts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("wizard", id)
		}
		return nil, fmt.Errorf("get wizard: %w", err)
	}
	// Drafts are private to the visitor that started them.
	if w.VisitorID != visitorID {
		return nil, apperrors.NotFound("wizard", id)
	}
	return w, nil
}

func (s *OrderService) save(ctx context.Context, w *domain.Wizard, expected int) error {
	ok, err := s.drafts.SaveIfVersion(ctx, w, expected)
	if err != nil {
		return fmt.Errorf("save wizard: %w", err)
	}
	if !ok {
		return apperrors.Conflict("wizard was changed by another request, reload and retry")
	}
	return nil
}
