package domain

import (
	"errors"
	"maps"
	"time"

	"github.com/way-19/consulting19/pkg/validator"
)

// DateLayout is the wire format of date fields such as preferredStartDate.
const DateLayout = "2006-01-02"

// StepKind identifies which slice of the order form a wizard step owns.
type StepKind string

const (
	StepCompany  StepKind = "company"
	StepServices StepKind = "services"
	StepDetails  StepKind = "details"
	StepBanking  StepKind = "banking"
	StepReview   StepKind = "review"
)

// FieldErrors maps a form field's JSON name to a human-readable message.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

// Merge copies other into fe without overwriting existing messages.
func (fe FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		fe.Add(k, v)
	}
}

// Clone returns an independent copy, or nil when fe is empty.
func (fe FieldErrors) Clone() FieldErrors {
	if len(fe) == 0 {
		return nil
	}
	return maps.Clone(fe)
}

type companyStep struct {
	CompanyName   string `json:"companyName" validate:"required,min=2"`
	ContactPerson string `json:"contactPerson" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,min=10"`
	Website       string `json:"website" validate:"omitempty,url"`
}

type servicesStep struct {
	SelectedServiceIDs []string `json:"selectedServiceIds" validate:"min=1"`
	ProjectDescription string   `json:"projectDescription" validate:"required,min=10"`
	Timeline           string   `json:"timeline" validate:"required,oneof=asap 1-month 2-3-months 3-6-months flexible"`
	Budget             string   `json:"budget" validate:"required,oneof=5k-10k 10k-25k 25k-50k 50k+ discuss"`
}

type detailsStep struct {
	AdditionalRequirements  string `json:"additionalRequirements" validate:"omitempty,max=2000"`
	PreferredStartDate      string `json:"preferredStartDate" validate:"required,datetime=2006-01-02"`
	CommunicationPreference string `json:"communicationPreference" validate:"required,oneof=email phone both"`
}

type bankingStep struct {
	BankName      string `json:"bankName" validate:"required,oneof=ziraat garanti isbank akbank yapi-kredi halkbank vakifbank"`
	AccountType   string `json:"accountType" validate:"required,oneof=checking savings"`
	MonthlyVolume string `json:"monthlyVolume" validate:"required,oneof=0-10k 10k-50k 50k-100k 100k-500k 500k+"`
	BusinessType  string `json:"businessType" validate:"required,oneof=retail wholesale service manufacturing technology healthcare education other"`
	RiskLevel     string `json:"riskLevel" validate:"required,oneof=low medium high"`
}

// ValidateStep checks the slice of form owned by kind. now supplies the
// reference date for preferredStartDate. The result is empty when the step
// is complete.
func ValidateStep(kind StepKind, form *OrderForm, catalog *Catalog, now time.Time) FieldErrors {
	errs := FieldErrors{}

	switch kind {
	case StepCompany:
		errs.Merge(structErrors(companyStep{
			CompanyName:   form.CompanyName,
			ContactPerson: form.ContactPerson,
			Email:         form.Email,
			Phone:         form.Phone,
			Website:       form.Website,
		}))
	case StepServices:
		errs.Merge(structErrors(servicesStep{
			SelectedServiceIDs: form.SelectedServiceIDs,
			ProjectDescription: form.ProjectDescription,
			Timeline:           form.Timeline,
			Budget:             form.Budget,
		}))
		for _, id := range form.SelectedServiceIDs {
			if !catalog.Contains(id) {
				errs.Add("selectedServiceIds", "contains an unknown service: "+id)
			}
		}
	case StepDetails:
		errs.Merge(structErrors(detailsStep{
			AdditionalRequirements:  form.AdditionalRequirements,
			PreferredStartDate:      form.PreferredStartDate,
			CommunicationPreference: form.CommunicationPreference,
		}))
		if _, bad := errs["preferredStartDate"]; !bad && form.PreferredStartDate < now.Format(DateLayout) {
			errs.Add("preferredStartDate", "must be today or later")
		}
	case StepBanking:
		errs.Merge(structErrors(bankingStep{
			BankName:      form.BankName,
			AccountType:   form.AccountType,
			MonthlyVolume: form.MonthlyVolume,
			BusinessType:  form.BusinessType,
			RiskLevel:     form.RiskLevel,
		}))
	case StepReview:
		if !form.TermsAccepted {
			errs.Add("termsAccepted", "must be accepted")
		}
		if !form.PrivacyAccepted {
			errs.Add("privacyAccepted", "must be accepted")
		}
	}

	return errs
}

func structErrors(s any) FieldErrors {
	err := validator.Validate(s)
	if err == nil {
		return nil
	}
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields()
	}
	// Only reachable on a programming error in the validate tags.
	return FieldErrors{"_": err.Error()}
}
