package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillCompany(t *testing.T, c *Catalog, w *Wizard) {
	t.Helper()
	for name, v := range map[string]any{
		"companyName":   "Acme Ltd",
		"contactPerson": "Jane Doe",
		"email":         "jane@acme.com",
		"phone":         "+905551234567",
	} {
		require.NoError(t, w.UpdateField(c, name, v, testNow))
	}
}

func fillServices(t *testing.T, c *Catalog, w *Wizard) {
	t.Helper()
	require.NoError(t, w.UpdateField(c, "selectedServiceIds", []any{"web-development", "consulting"}, testNow))
	require.NoError(t, w.UpdateField(c, "projectDescription", "A new corporate website", testNow))
	require.NoError(t, w.UpdateField(c, "timeline", "1-month", testNow))
	require.NoError(t, w.UpdateField(c, "budget", "5k-10k", testNow))
}

func fillDetails(t *testing.T, c *Catalog, w *Wizard) {
	t.Helper()
	require.NoError(t, w.UpdateField(c, "preferredStartDate", "2026-04-01", testNow))
	require.NoError(t, w.UpdateField(c, "communicationPreference", "email", testNow))
}

func fillBanking(t *testing.T, c *Catalog, w *Wizard) {
	t.Helper()
	for name, v := range map[string]string{
		"bankName":      "garanti",
		"accountType":   "checking",
		"monthlyVolume": "10k-50k",
		"businessType":  "technology",
		"riskLevel":     "low",
	} {
		require.NoError(t, w.UpdateField(c, name, v, testNow))
	}
}

func acceptTerms(t *testing.T, c *Catalog, w *Wizard) {
	t.Helper()
	require.NoError(t, w.UpdateField(c, "termsAccepted", true, testNow))
	require.NoError(t, w.UpdateField(c, "privacyAccepted", true, testNow))
}

// ============================================================================
// Step Validation Tests
// ============================================================================

func TestValidateStep_Company(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name  string
		form  OrderForm
		field string
		msg   string
	}{
		{"missing company", OrderForm{ContactPerson: "Jane", Email: "j@a.com", Phone: "5551234567"}, "companyName", "is required"},
		{"bad email", OrderForm{CompanyName: "Acme", ContactPerson: "Jane", Email: "not-an-email", Phone: "5551234567"}, "email", "must be a valid email address"},
		{"short phone", OrderForm{CompanyName: "Acme", ContactPerson: "Jane", Email: "j@a.com", Phone: "123"}, "phone", "must be at least 10 characters"},
		{"bad website", OrderForm{CompanyName: "Acme", ContactPerson: "Jane", Email: "j@a.com", Phone: "5551234567", Website: "acme"}, "website", "must be a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStep(StepCompany, &tt.form, c, testNow)
			assert.Equal(t, tt.msg, errs[tt.field])
		})
	}
}

func TestValidateStep_CompanyValid(t *testing.T) {
	c := testCatalog(t)
	f := OrderForm{CompanyName: "Acme", ContactPerson: "Jane", Email: "j@a.com", Phone: "5551234567", Website: "https://acme.com"}
	assert.Empty(t, ValidateStep(StepCompany, &f, c, testNow))
}

func TestValidateStep_Services(t *testing.T) {
	c := testCatalog(t)

	f := OrderForm{ProjectDescription: "short", Timeline: "tomorrow", Budget: "5k-10k"}
	errs := ValidateStep(StepServices, &f, c, testNow)

	assert.Equal(t, "must contain at least 1 item(s)", errs["selectedServiceIds"])
	assert.Equal(t, "must be at least 10 characters", errs["projectDescription"])
	assert.Contains(t, errs["timeline"], "must be one of")
	assert.NotContains(t, errs, "budget")
}

func TestValidateStep_ServicesUnknownID(t *testing.T) {
	c := testCatalog(t)
	f := OrderForm{
		SelectedServiceIDs: []string{"seo"},
		ProjectDescription: "Search engine optimisation",
		Timeline:           "asap",
		Budget:             "discuss",
	}

	errs := ValidateStep(StepServices, &f, c, testNow)
	assert.Contains(t, errs["selectedServiceIds"], "unknown service")
}

func TestValidateStep_DetailsStartDate(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name string
		date string
		want string
	}{
		{"yesterday", "2026-03-09", "must be today or later"},
		{"today", "2026-03-10", ""},
		{"future", "2027-01-01", ""},
		{"bad format", "10/03/2026", "must be a date in 2006-01-02 format"},
		{"missing", "", "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := OrderForm{PreferredStartDate: tt.date, CommunicationPreference: "both"}
			errs := ValidateStep(StepDetails, &f, c, testNow)
			assert.Equal(t, tt.want, errs["preferredStartDate"])
		})
	}
}

func TestValidateStep_Banking(t *testing.T) {
	c := testCatalog(t)
	f := OrderForm{BankName: "garanti", AccountType: "crypto"}

	errs := ValidateStep(StepBanking, &f, c, testNow)
	assert.NotContains(t, errs, "bankName")
	assert.Contains(t, errs["accountType"], "must be one of")
	assert.Equal(t, "is required", errs["monthlyVolume"])
	assert.Equal(t, "is required", errs["businessType"])
	assert.Equal(t, "is required", errs["riskLevel"])
}

func TestValidateStep_Review(t *testing.T) {
	c := testCatalog(t)
	f := OrderForm{TermsAccepted: true}

	errs := ValidateStep(StepReview, &f, c, testNow)
	assert.Equal(t, FieldErrors{"privacyAccepted": "must be accepted"}, errs)
}

// ============================================================================
// Wizard Tests
// ============================================================================

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantStandard, v)

	v, err = ParseVariant("banking")
	require.NoError(t, err)
	assert.Equal(t, VariantBanking, v)

	_, err = ParseVariant("premium")
	assert.ErrorIs(t, err, ErrUnknownVariant)

	for _, v := range Variants() {
		got, err := ParseVariant(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestVariant_Steps(t *testing.T) {
	assert.Equal(t, []StepKind{StepCompany, StepServices, StepDetails, StepReview}, VariantStandard.Steps())
	assert.Equal(t, []StepKind{StepCompany, StepServices, StepBanking, StepReview}, VariantBanking.Steps())
	assert.Len(t, VariantExpress.Steps(), 3)
}

func TestNewWizard_InitialState(t *testing.T) {
	w := NewWizard("w1", "v1", VariantStandard, testNow)

	assert.Equal(t, StatusStep, w.Status)
	assert.Equal(t, 1, w.CurrentStep)
	assert.Equal(t, 4, w.TotalSteps())
	assert.Empty(t, w.Form.SelectedServiceIDs)
}

func TestWizard_NextBlockedByEmptyCompany(t *testing.T) {
	c := testCatalog(t)
	w := NewWizard("w1", "v1", VariantStandard, testNow)

	errs, err := w.Next(c, testNow)
	require.NoError(t, err)
	assert.Equal(t, "is required", errs["companyName"])
	assert.Equal(t, 1, w.CurrentStep)
	assert.Equal(t, "is required", w.Errors["companyName"])
}

func TestWizard_UpdateFieldClearsFieldError(t *testing.T) {
	c := testCatalog(t)
	w := NewWizard("w1", "v1", VariantStandard, testNow)

	_, err := w.Next(c, testNow)
	require.NoError(t, err)
	require.Contains(t, w.Errors, "companyName")

	require.NoError(t, w.UpdateField(c, "companyName", "Acme", testNow))
	assert.NotContains(t, w.Errors, "companyName")
	assert.Contains(t, w.Errors, "email")
}

func TestWizard_PreviousPreservesData(t *testing.T) {
	c := testCatalog(t)
	w := NewWizard("w1", "v1", VariantStandard, testNow)

	assert.ErrorIs(t, w.Previous(testNow), ErrAtFirstStep)

	fillCompany(t, c, w)
	errs, err := w.Next(c, testNow)
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Equal(t, 2, w.CurrentStep)

	require.NoError(t, w.Previous(testNow))
	assert.Equal(t, 1, w.CurrentStep)
	assert.Equal(t, "Acme Ltd", w.Form.CompanyName)
}

func TestWizard_GoToRequiresEarlierSteps(t *testing.T) {
	c := testCatalog(t)
	w := NewWizard("w1", "v1", VariantStandard, testNow)

	assert.ErrorIs(t, w.GoTo(3, c, testNow), ErrStepLocked)
	assert.ErrorIs(t, w.GoTo(9, c, testNow), ErrStepOutOfRange)

	fillCompany(t, c, w)
	fillServices(t, c, w)
	require.NoError(t, w.GoTo(3, c, testNow))
	assert.Equal(t, 3, w.CurrentStep)

	require.NoError(t, w.GoTo(1, c, testNow))
	assert.Equal(t, 1, w.CurrentStep)
}

func TestWizard_NextCappedAtFinalStep(t *testing.T) {
	c := testCatalog(t)
	w := NewWizard("w1", "v1", VariantExpress, testNow)
	fillCompany(t, c, w)
	fillServices(t, c, w)

	for i := 0; i < 5; i++ {
		errs, err := w.Next(c, testNow)
		require.NoError(t, err)
		require.Empty(t, errs)
	}
	assert.Equal(t, 3, w.CurrentStep)
}

func TestWizard_EndToEndSubmission(t *testing.T) {
	c := testCatalog(t)
	w := NewWizard("w1", "v1", VariantStandard, testNow)

	fillCompany(t, c, w)
	_, err := w.Next(c, testNow)
	require.NoError(t, err)

	fillServices(t, c, w)
	_, err = w.Next(c, testNow)
	require.NoError(t, err)

	fillDetails(t, c, w)
	errs, err := w.Next(c, testNow)
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, 4, w.CurrentStep)

	// Terms not yet accepted: submission is blocked.
	errs, err = w.BeginSubmit(c, testNow)
	require.NoError(t, err)
	assert.Equal(t, "must be accepted", errs["termsAccepted"])
	assert.Equal(t, StatusStep, w.Status)

	acceptTerms(t, c, w)
	errs, err = w.BeginSubmit(c, testNow)
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Equal(t, StatusSubmitting, w.Status)
	assert.NotNil(t, w.SubmissionStartedAt)

	require.NoError(t, w.CompleteSubmit(Receipt{Reference: "C19-20260310-ABC123", RedirectURL: "https://app.example.com"}, testNow))
	assert.Equal(t, StatusSuccess, w.Status)
	assert.Equal(t, "C19-20260310-ABC123", w.Receipt.Reference)
	assert.Nil(t, w.SubmissionStartedAt)
	assert.Equal(t, int64(7000), w.Form.TotalPrice(c))

	assert.ErrorIs(t, w.UpdateField(c, "companyName", "Other", testNow), ErrAlreadySubmitted)
	_, err = w.BeginSubmit(c, testNow)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestWizard_BankingVariantRequiresBankingStep(t *testing.T) {
	c := testCatalog(t)
	w := NewWizard("w1", "v1", VariantBanking, testNow)
	fillCompany(t, c, w)
	fillServices(t, c, w)
	require.NoError(t, w.GoTo(3, c, testNow))

	errs, err := w.Next(c, testNow)
	require.NoError(t, err)
	assert.Contains(t, errs, "bankName")

	fillBanking(t, c, w)
	errs, err = w.Next(c, testNow)
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Equal(t, 4, w.CurrentStep)

	acceptTerms(t, c, w)
	errs, err = w.BeginSubmit(c, testNow)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestWizard_SubmitOnlyFromFinalStep(t *testing.T) {
	c := testCatalog(t)
	w := NewWizard("w1", "v1", VariantStandard, testNow)

	_, err := w.BeginSubmit(c, testNow)
	assert.ErrorIs(t, err, ErrNotAtFinalStep)
}

func submittingWizard(t *testing.T, c *Catalog) *Wizard {
	t.Helper()
	w := NewWizard("w1", "v1", VariantExpress, testNow)
	fillCompany(t, c, w)
	fillServices(t, c, w)
	acceptTerms(t, c, w)
	require.NoError(t, w.GoTo(3, c, testNow))
	errs, err := w.BeginSubmit(c, testNow)
	require.NoError(t, err)
	require.Empty(t, errs)
	return w
}

func TestWizard_DoubleSubmitRejected(t *testing.T) {
	c := testCatalog(t)
	w := submittingWizard(t, c)

	_, err := w.BeginSubmit(c, testNow)
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	assert.ErrorIs(t, w.Previous(testNow), ErrSubmitInProgress)
	_, err = w.ToggleService(c, "custom", testNow)
	assert.ErrorIs(t, err, ErrSubmitInProgress)
}

func TestWizard_FailureThenRetry(t *testing.T) {
	c := testCatalog(t)
	w := submittingWizard(t, c)

	require.NoError(t, w.FailSubmit("order service unavailable", testNow))
	assert.Equal(t, StatusFailure, w.Status)
	assert.Equal(t, "order service unavailable", w.SubmitError)
	assert.Equal(t, 3, w.CurrentStep)
	assert.True(t, w.IsEditable())

	errs, err := w.BeginSubmit(c, testNow)
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Equal(t, StatusSubmitting, w.Status)
	assert.Empty(t, w.SubmitError)
}

func TestWizard_PreviousFromFailureResumesNavigation(t *testing.T) {
	c := testCatalog(t)
	w := submittingWizard(t, c)
	require.NoError(t, w.FailSubmit("boom", testNow))

	require.NoError(t, w.Previous(testNow))
	assert.Equal(t, StatusStep, w.Status)
	assert.Equal(t, 2, w.CurrentStep)
	assert.Empty(t, w.SubmitError)
}

func TestWizard_CompleteRequiresSubmitting(t *testing.T) {
	w := NewWizard("w1", "v1", VariantStandard, testNow)
	assert.ErrorIs(t, w.CompleteSubmit(Receipt{}, testNow), ErrNotSubmitting)
	assert.ErrorIs(t, w.FailSubmit("x", testNow), ErrNotSubmitting)
}

func TestWizard_StepInfos(t *testing.T) {
	c := testCatalog(t)
	w := NewWizard("w1", "v1", VariantStandard, testNow)
	fillCompany(t, c, w)

	infos := w.StepInfos(c, testNow)
	require.Len(t, infos, 4)
	assert.True(t, infos[0].Completed)
	assert.True(t, infos[0].Active)
	assert.False(t, infos[1].Completed)
	assert.False(t, infos[1].Active)
	assert.Equal(t, StepReview, infos[3].Kind)
}

func TestWizard_UpdateFieldServicesValidation(t *testing.T) {
	c := testCatalog(t)
	w := NewWizard("w1", "v1", VariantStandard, testNow)

	err := w.UpdateField(c, "selectedServiceIds", []any{"consulting", 3}, testNow)
	assert.ErrorIs(t, err, ErrFieldType)

	err = w.UpdateField(c, "selectedServiceIds", []string{"seo"}, testNow)
	assert.ErrorIs(t, err, ErrUnknownService)

	require.NoError(t, w.UpdateField(c, "selectedServiceIds", nil, testNow))
	assert.Empty(t, w.Form.SelectedServiceIDs)
}
