package domain

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownField is returned when a form field name is not recognised.
	ErrUnknownField = errors.New("unknown form field")

	// ErrFieldType is returned when a value has the wrong type for its field.
	ErrFieldType = errors.New("invalid value type for form field")
)

// Option lists for the enumerated form fields. The validate tags in
// validation.go must stay in sync with these.
var (
	TimelineOptions      = []string{"asap", "1-month", "2-3-months", "3-6-months", "flexible"}
	BudgetOptions        = []string{"5k-10k", "10k-25k", "25k-50k", "50k+", "discuss"}
	CommunicationOptions = []string{"email", "phone", "both"}
	BankOptions          = []string{"ziraat", "garanti", "isbank", "akbank", "yapi-kredi", "halkbank", "vakifbank"}
	AccountTypeOptions   = []string{"checking", "savings"}
	MonthlyVolumeOptions = []string{"0-10k", "10k-50k", "50k-100k", "100k-500k", "500k+"}
	BusinessTypeOptions  = []string{"retail", "wholesale", "service", "manufacturing", "technology", "healthcare", "education", "other"}
	RiskLevelOptions     = []string{"low", "medium", "high"}
)

// OrderForm is the aggregate data collected by the order wizard.
type OrderForm struct {
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Website       string `json:"website"`

	SelectedServiceIDs []string `json:"selectedServiceIds"`
	ProjectDescription string   `json:"projectDescription"`
	Timeline           string   `json:"timeline"`
	Budget             string   `json:"budget"`

	AdditionalRequirements  string `json:"additionalRequirements"`
	PreferredStartDate      string `json:"preferredStartDate"`
	CommunicationPreference string `json:"communicationPreference"`

	BankName      string `json:"bankName"`
	AccountType   string `json:"accountType"`
	MonthlyVolume string `json:"monthlyVolume"`
	BusinessType  string `json:"businessType"`
	RiskLevel     string `json:"riskLevel"`

	TermsAccepted   bool `json:"termsAccepted"`
	PrivacyAccepted bool `json:"privacyAccepted"`
}

func (f *OrderForm) stringFields() map[string]*string {
	return map[string]*string{
		"companyName":             &f.CompanyName,
		"contactPerson":           &f.ContactPerson,
		"email":                   &f.Email,
		"phone":                   &f.Phone,
		"website":                 &f.Website,
		"projectDescription":      &f.ProjectDescription,
		"timeline":                &f.Timeline,
		"budget":                  &f.Budget,
		"additionalRequirements":  &f.AdditionalRequirements,
		"preferredStartDate":      &f.PreferredStartDate,
		"communicationPreference": &f.CommunicationPreference,
		"bankName":                &f.BankName,
		"accountType":             &f.AccountType,
		"monthlyVolume":           &f.MonthlyVolume,
		"businessType":            &f.BusinessType,
		"riskLevel":               &f.RiskLevel,
	}
}

func (f *OrderForm) boolFields() map[string]*bool {
	return map[string]*bool{
		"termsAccepted":   &f.TermsAccepted,
		"privacyAccepted": &f.PrivacyAccepted,
	}
}

// SetField assigns a scalar field by its JSON name. No validation beyond
// the value's type is performed. selectedServiceIds is not settable here;
// use SetServices or ToggleService.
func (f *OrderForm) SetField(name string, value any) error {
	if p, ok := f.stringFields()[name]; ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s expects a string", ErrFieldType, name)
		}
		*p = s
		return nil
	}
	if p, ok := f.boolFields()[name]; ok {
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s expects a boolean", ErrFieldType, name)
		}
		*p = b
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownField, name)
}

// SetServices replaces the selection. Every id must be in the catalog;
// duplicates are collapsed keeping the first occurrence.
func (f *OrderForm) SetServices(catalog *Catalog, ids []string) error {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !catalog.Contains(id) {
			return fmt.Errorf("%w: %s", ErrUnknownService, id)
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	f.SelectedServiceIDs = out
	return nil
}

// ToggleService removes id from the selection if present and adds it
// otherwise. It reports whether id is selected afterwards.
func (f *OrderForm) ToggleService(catalog *Catalog, id string) (bool, error) {
	if !catalog.Contains(id) {
		return false, fmt.Errorf("%w: %s", ErrUnknownService, id)
	}
	if i := slices.Index(f.SelectedServiceIDs, id); i >= 0 {
		f.SelectedServiceIDs = slices.Delete(f.SelectedServiceIDs, i, i+1)
		return false, nil
	}
	f.SelectedServiceIDs = append(f.SelectedServiceIDs, id)
	return true, nil
}

// IsServiceSelected reports whether id is in the selection.
func (f *OrderForm) IsServiceSelected(id string) bool {
	return slices.Contains(f.SelectedServiceIDs, id)
}

// TotalPrice is the sum of the prices of the selected services.
func (f *OrderForm) TotalPrice(catalog *Catalog) int64 {
	return catalog.Total(f.SelectedServiceIDs)
}

// SelectedServiceDetails returns the selected offerings in catalog order.
func (f *OrderForm) SelectedServiceDetails(catalog *Catalog) []ServiceOffering {
	return catalog.Filter(f.SelectedServiceIDs)
}
