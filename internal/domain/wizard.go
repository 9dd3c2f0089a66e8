package domain

import (
	"errors"
	"fmt"
	"time"
)

// Wizard transition errors.
var (
	ErrUnknownVariant   = errors.New("unknown wizard variant")
	ErrAtFirstStep      = errors.New("already at the first step")
	ErrStepOutOfRange   = errors.New("step out of range")
	ErrStepLocked       = errors.New("earlier steps are incomplete")
	ErrNotAtFinalStep   = errors.New("submit is only allowed from the final step")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrAlreadySubmitted = errors.New("order already submitted")
	ErrNotSubmitting    = errors.New("wizard is not submitting")
)

// Variant selects the sequence of steps a wizard walks through.
type Variant string

const (
	VariantStandard Variant = "standard"
	VariantBanking  Variant = "banking"
	VariantExpress  Variant = "express"
)

// Variants lists the supported variants, standard first.
func Variants() []Variant {
	return []Variant{VariantStandard, VariantBanking, VariantExpress}
}

// ParseVariant converts s to a Variant. An empty string yields the
// standard variant.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case "":
		return VariantStandard, nil
	case VariantStandard, VariantBanking, VariantExpress:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Steps returns the ordered step kinds of the variant.
func (v Variant) Steps() []StepKind {
	switch v {
	case VariantBanking:
		return []StepKind{StepCompany, StepServices, StepBanking, StepReview}
	case VariantExpress:
		return []StepKind{StepCompany, StepServices, StepReview}
	default:
		return []StepKind{StepCompany, StepServices, StepDetails, StepReview}
	}
}

// Status is the coarse state of the wizard.
type Status string

const (
	StatusStep       Status = "step"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusFailure    Status = "failure"
)

// Receipt is the acknowledgement returned by a successful submission.
type Receipt struct {
	Reference   string    `json:"reference"`
	RedirectURL string    `json:"redirect_url,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Wizard is the order-intake state machine. It is a value persisted as a
// draft between requests; Version is bumped on every successful save.
type Wizard struct {
	ID                  string      `json:"id"`
	VisitorID           string      `json:"visitor_id"`
	Variant             Variant     `json:"variant"`
	Status              Status      `json:"status"`
	CurrentStep         int         `json:"current_step"`
	Form                OrderForm   `json:"form"`
	Errors              FieldErrors `json:"errors,omitempty"`
	SubmitError         string      `json:"submit_error,omitempty"`
	Receipt             *Receipt    `json:"receipt,omitempty"`
	SubmissionStartedAt *time.Time  `json:"submission_started_at,omitempty"`
	Version             int         `json:"version"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// NewWizard returns a wizard at step 1 with an empty form.
func NewWizard(id, visitorID string, variant Variant, now time.Time) *Wizard {
	return &Wizard{
		ID:          id,
		VisitorID:   visitorID,
		Variant:     variant,
		Status:      StatusStep,
		CurrentStep: 1,
		Form:        OrderForm{SelectedServiceIDs: []string{}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TotalSteps is N, the number of steps of the wizard's variant.
func (w *Wizard) TotalSteps() int {
	return len(w.Variant.Steps())
}

// StepKindAt returns the kind of the 1-based step n.
func (w *Wizard) StepKindAt(n int) (StepKind, error) {
	steps := w.Variant.Steps()
	if n < 1 || n > len(steps) {
		return "", fmt.Errorf("%w: %d", ErrStepOutOfRange, n)
	}
	return steps[n-1], nil
}

// IsEditable reports whether form data and navigation may change.
func (w *Wizard) IsEditable() bool {
	return w.Status == StatusStep || w.Status == StatusFailure
}

func (w *Wizard) checkEditable() error {
	switch w.Status {
	case StatusSubmitting:
		return ErrSubmitInProgress
	case StatusSuccess:
		return ErrAlreadySubmitted
	}
	return nil
}

// IsCompleted reports whether step n's fields pass validation.
func (w *Wizard) IsCompleted(n int, catalog *Catalog, now time.Time) bool {
	kind, err := w.StepKindAt(n)
	if err != nil {
		return false
	}
	return len(ValidateStep(kind, &w.Form, catalog, now)) == 0
}

// UpdateField sets one form field by JSON name without validating it.
// selectedServiceIds accepts a list of catalog ids.
func (w *Wizard) UpdateField(catalog *Catalog, name string, value any, now time.Time) error {
	if err := w.checkEditable(); err != nil {
		return err
	}

	if name == "selectedServiceIds" {
		ids, err := toStringSlice(value)
		if err != nil {
			return err
		}
		if err := w.Form.SetServices(catalog, ids); err != nil {
			return err
		}
	} else if err := w.Form.SetField(name, value); err != nil {
		return err
	}

	delete(w.Errors, name)
	w.UpdatedAt = now
	return nil
}

// ToggleService flips the selection of a catalog service and reports
// whether it is selected afterwards.
func (w *Wizard) ToggleService(catalog *Catalog, id string, now time.Time) (bool, error) {
	if err := w.checkEditable(); err != nil {
		return false, err
	}
	selected, err := w.Form.ToggleService(catalog, id)
	if err != nil {
		return false, err
	}
	delete(w.Errors, "selectedServiceIds")
	w.UpdatedAt = now
	return selected, nil
}

// Next validates the current step and advances when it is complete. The
// returned FieldErrors is non-empty when the step is incomplete, in which
// case the wizard stays where it is. The review step is validated on
// submit only, so Next at the final step is a no-op.
func (w *Wizard) Next(catalog *Catalog, now time.Time) (FieldErrors, error) {
	if err := w.checkEditable(); err != nil {
		return nil, err
	}

	kind, err := w.StepKindAt(w.CurrentStep)
	if err != nil {
		return nil, err
	}
	if kind != StepReview {
		if errs := ValidateStep(kind, &w.Form, catalog, now); len(errs) > 0 {
			w.Errors = errs
			w.UpdatedAt = now
			return errs.Clone(), nil
		}
	}

	w.Errors = nil
	if w.CurrentStep < w.TotalSteps() {
		w.CurrentStep++
	}
	w.UpdatedAt = now
	return nil, nil
}

// Previous moves back one step keeping all entered data. Leaving the final
// step from the failure state returns the wizard to normal navigation.
func (w *Wizard) Previous(now time.Time) error {
	if err := w.checkEditable(); err != nil {
		return err
	}
	if w.CurrentStep <= 1 {
		return ErrAtFirstStep
	}
	w.CurrentStep--
	w.Status = StatusStep
	w.SubmitError = ""
	w.Errors = nil
	w.UpdatedAt = now
	return nil
}

// GoTo jumps to step n. Moving forward requires every earlier step to be
// complete.
func (w *Wizard) GoTo(n int, catalog *Catalog, now time.Time) error {
	if err := w.checkEditable(); err != nil {
		return err
	}
	if n < 1 || n > w.TotalSteps() {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, n)
	}
	for i := 1; i < n; i++ {
		if !w.IsCompleted(i, catalog, now) {
			return fmt.Errorf("%w: step %d", ErrStepLocked, i)
		}
	}
	if n != w.CurrentStep {
		w.Status = StatusStep
		w.SubmitError = ""
	}
	w.CurrentStep = n
	w.Errors = nil
	w.UpdatedAt = now
	return nil
}

// BeginSubmit validates every step plus the review acknowledgements and
// moves the wizard into the submitting state. Validation failures are
// returned as FieldErrors and leave the wizard unchanged apart from its
// recorded errors.
func (w *Wizard) BeginSubmit(catalog *Catalog, now time.Time) (FieldErrors, error) {
	if err := w.checkEditable(); err != nil {
		return nil, err
	}
	if w.CurrentStep != w.TotalSteps() {
		return nil, ErrNotAtFinalStep
	}

	errs := FieldErrors{}
	for _, kind := range w.Variant.Steps() {
		errs.Merge(ValidateStep(kind, &w.Form, catalog, now))
	}
	if len(errs) > 0 {
		w.Errors = errs
		w.UpdatedAt = now
		return errs.Clone(), nil
	}

	started := now
	w.Status = StatusSubmitting
	w.Errors = nil
	w.SubmitError = ""
	w.SubmissionStartedAt = &started
	w.UpdatedAt = now
	return nil, nil
}

// CompleteSubmit records a successful submission.
func (w *Wizard) CompleteSubmit(receipt Receipt, now time.Time) error {
	if w.Status != StatusSubmitting {
		return ErrNotSubmitting
	}
	w.Status = StatusSuccess
	w.Receipt = &receipt
	w.SubmissionStartedAt = nil
	w.UpdatedAt = now
	return nil
}

// FailSubmit records a failed submission. The wizard stays at the final
// step and may be submitted again.
func (w *Wizard) FailSubmit(message string, now time.Time) error {
	if w.Status != StatusSubmitting {
		return ErrNotSubmitting
	}
	w.Status = StatusFailure
	w.SubmitError = message
	w.SubmissionStartedAt = nil
	w.UpdatedAt = now
	return nil
}

// StepInfo describes one step for display.
type StepInfo struct {
	Index     int      `json:"index"`
	Kind      StepKind `json:"kind"`
	Completed bool     `json:"completed"`
	Active    bool     `json:"active"`
}

// StepInfos returns the display state of every step.
func (w *Wizard) StepInfos(catalog *Catalog, now time.Time) []StepInfo {
	steps := w.Variant.Steps()
	out := make([]StepInfo, len(steps))
	for i, kind := range steps {
		n := i + 1
		out[i] = StepInfo{
			Index:     n,
			Kind:      kind,
			Completed: len(ValidateStep(kind, &w.Form, catalog, now)) == 0,
			Active:    n == w.CurrentStep && w.Status != StatusSuccess,
		}
	}
	return out
}

func toStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: selectedServiceIds expects a list of strings", ErrFieldType)
			}
			out = append(out, s)
		}
		return out, nil
	case nil:
		return []string{}, nil
	default:
		return nil, fmt.Errorf("%w: selectedServiceIds expects a list of strings", ErrFieldType)
	}
}
