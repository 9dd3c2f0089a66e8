package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ConsentKey is the preference key under which consent is stored.
const ConsentKey = "consulting19-cookie-consent"

var (
	// ErrUnknownCategory is returned for a cookie category that does not exist.
	ErrUnknownCategory = errors.New("unknown cookie category")

	// ErrNecessaryLocked is returned when trying to disable necessary cookies.
	ErrNecessaryLocked = errors.New("necessary cookies cannot be disabled")
)

// CookieCategory names a class of cookies a visitor can opt in or out of.
type CookieCategory string

const (
	CookieNecessary  CookieCategory = "necessary"
	CookieFunctional CookieCategory = "functional"
	CookieAnalytics  CookieCategory = "analytics"
	CookieMarketing  CookieCategory = "marketing"
)

// CookieConsent holds a visitor's cookie preferences. Necessary is always
// true.
type CookieConsent struct {
	Necessary  bool       `json:"necessary"`
	Functional bool       `json:"functional"`
	Analytics  bool       `json:"analytics"`
	Marketing  bool       `json:"marketing"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// DefaultConsent is applied until the visitor chooses.
func DefaultConsent() CookieConsent {
	return CookieConsent{Necessary: true, Functional: true, Analytics: true}
}

// ParseConsent decodes a stored consent value. Missing or malformed input
// yields DefaultConsent.
func ParseConsent(raw string) CookieConsent {
	if raw == "" {
		return DefaultConsent()
	}
	var c CookieConsent
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return DefaultConsent()
	}
	c.Necessary = true
	return c
}

// Encode serialises the consent for storage.
func (c CookieConsent) Encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal consent: %w", err)
	}
	return string(b), nil
}

// Toggle flips an optional category.
func (c *CookieConsent) Toggle(category CookieCategory, now time.Time) error {
	switch category {
	case CookieNecessary:
		return ErrNecessaryLocked
	case CookieFunctional:
		c.Functional = !c.Functional
	case CookieAnalytics:
		c.Analytics = !c.Analytics
	case CookieMarketing:
		c.Marketing = !c.Marketing
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	c.touch(now)
	return nil
}

// Set assigns every optional category at once.
func (c *CookieConsent) Set(functional, analytics, marketing bool, now time.Time) {
	c.Necessary = true
	c.Functional = functional
	c.Analytics = analytics
	c.Marketing = marketing
	c.touch(now)
}

// AcceptAll enables every category.
func (c *CookieConsent) AcceptAll(now time.Time) {
	c.Set(true, true, true, now)
}

// RejectAll keeps only necessary cookies.
func (c *CookieConsent) RejectAll(now time.Time) {
	c.Set(false, false, false, now)
}

func (c *CookieConsent) touch(now time.Time) {
	c.Necessary = true
	t := now
	c.UpdatedAt = &t
}
