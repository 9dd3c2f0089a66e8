package domain

import (
	"strings"
	"time"
)

// ContactMessageTypes are the accepted values of ContactLead.MessageType.
var ContactMessageTypes = []string{"suggestion", "complaint", "partnership", "other"}

// ContactLead is a message left through the contact form.
type ContactLead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,min=2,max=200"`
	Email       string    `json:"email" validate:"required,email"`
	Company     string    `json:"company" validate:"omitempty,max=200"`
	Country     string    `json:"country" validate:"omitempty,max=100"`
	MessageType string    `json:"messageType" validate:"required,oneof=suggestion complaint partnership other"`
	Subject     string    `json:"subject" validate:"required,min=3,max=200"`
	Message     string    `json:"message" validate:"required,min=10,max=5000"`
	VisitorID   string    `json:"visitor_id,omitempty"`
	Language    string    `json:"language,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Normalize trims surrounding whitespace from the free-text fields.
func (l *ContactLead) Normalize() {
	l.Name = strings.TrimSpace(l.Name)
	l.Email = strings.TrimSpace(l.Email)
	l.Company = strings.TrimSpace(l.Company)
	l.Country = strings.TrimSpace(l.Country)
	l.Subject = strings.TrimSpace(l.Subject)
	l.Message = strings.TrimSpace(l.Message)
}

// Validate normalizes the lead and returns per-field errors.
func (l *ContactLead) Validate() FieldErrors {
	l.Normalize()
	return structErrors(l)
}
