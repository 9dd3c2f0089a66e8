package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactForm struct {
	CompanyName string   `json:"companyName" validate:"required,min=2"`
	Email       string   `json:"email" validate:"required,email"`
	Website     string   `json:"website,omitempty" validate:"omitempty,url"`
	Services    []string `json:"selectedServices" validate:"min=1"`
	Preference  string   `json:"communicationPreference" validate:"oneof=email phone both"`
	Internal    string   `json:"-"`
	NoTag       string   `validate:"omitempty,max=3"`
}

func validForm() contactForm {
	return contactForm{
		CompanyName: "Acme",
		Email:       "ops@acme.io",
		Services:    []string{"consulting"},
		Preference:  "email",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validForm()))
}

func TestValidate_UsesJSONNames(t *testing.T) {
	f := validForm()
	f.CompanyName = ""
	f.Email = "not-an-email"

	fields := fieldsOf(t, Validate(f))
	assert.Equal(t, "is required", fields["companyName"])
	assert.Equal(t, "must be a valid email address", fields["email"])
}

func TestValidate_MinOnStringAndSlice(t *testing.T) {
	f := validForm()
	f.CompanyName = "A"
	f.Services = nil

	fields := fieldsOf(t, Validate(f))
	assert.Equal(t, "must be at least 2 characters", fields["companyName"])
	assert.Equal(t, "must contain at least 1 item(s)", fields["selectedServices"])
}

func TestValidate_OptionalURL(t *testing.T) {
	f := validForm()
	f.Website = "acme"
	fields := fieldsOf(t, Validate(f))
	assert.Equal(t, "must be a valid URL", fields["website"])

	f.Website = "https://acme.io"
	assert.NoError(t, Validate(f))
}

func TestValidate_OneOf(t *testing.T) {
	f := validForm()
	f.Preference = "fax"
	fields := fieldsOf(t, Validate(f))
	assert.Equal(t, "must be one of: email phone both", fields["communicationPreference"])
}

func TestValidate_FallsBackToGoName(t *testing.T) {
	f := validForm()
	f.NoTag = "toolong"
	fields := fieldsOf(t, Validate(f))
	assert.Contains(t, fields, "NoTag")
}

func TestValidationError_Message(t *testing.T) {
	f := validForm()
	f.Email = ""
	err := Validate(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'email' is required")
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"companyName":"Acme","email":"ops@acme.io","selectedServices":["custom"],"communicationPreference":"both"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var f contactForm
	require.NoError(t, DecodeAndValidate(req, &f))
	assert.Equal(t, "Acme", f.CompanyName)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	var f contactForm
	err := DecodeAndValidate(req, &f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
