package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/internal/repository"
)

// ConsentService stores the visitor's cookie preferences.
type ConsentService struct {
	prefs  repository.PreferenceRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewConsentService creates a new consent service.
func NewConsentService(prefs repository.PreferenceRepository, logger *slog.Logger) *ConsentService {
	return &ConsentService{
		prefs:  prefs,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the stored consent, or the defaults when none is stored or
// the store is unreachable.
func (s *ConsentService) Get(ctx context.Context, visitorID string) domain.CookieConsent {
	raw, err := s.prefs.Get(ctx, visitorID, domain.ConsentKey)
	if err != nil {
		s.logger.WarnContext(ctx, "cookie consent unavailable, using defaults",
			slog.String("error", err.Error()),
		)
		return domain.DefaultConsent()
	}
	return domain.ParseConsent(raw)
}

// Toggle flips one category.
func (s *ConsentService) Toggle(ctx context.Context, visitorID string, category domain.CookieCategory) (domain.CookieConsent, error) {
	return s.update(ctx, visitorID, func(c *domain.CookieConsent, now time.Time) error {
		return c.Toggle(category, now)
	})
}

// Set replaces the optional categories.
func (s *ConsentService) Set(ctx context.Context, visitorID string, functional, analytics, marketing bool) (domain.CookieConsent, error) {
	return s.update(ctx, visitorID, func(c *domain.CookieConsent, now time.Time) error {
		c.Set(functional, analytics, marketing, now)
		return nil
	})
}

// AcceptAll enables every category.
func (s *ConsentService) AcceptAll(ctx context.Context, visitorID string) (domain.CookieConsent, error) {
	return s.update(ctx, visitorID, func(c *domain.CookieConsent, now time.Time) error {
		c.AcceptAll(now)
		return nil
	})
}

// RejectAll keeps only necessary cookies.
func (s *ConsentService) RejectAll(ctx context.Context, visitorID string) (domain.CookieConsent, error) {
	return s.update(ctx, visitorID, func(c *domain.CookieConsent, now time.Time) error {
		c.RejectAll(now)
		return nil
	})
}

func (s *ConsentService) update(ctx context.Context, visitorID string, fn func(c *domain.CookieConsent, now time.Time) error) (domain.CookieConsent, error) {
	c := s.Get(ctx, visitorID)
	if err := fn(&c, s.now()); err != nil {
		return c, mapDomainError(err)
	}

	raw, err := c.Encode()
	if err != nil {
		return c, err
	}
	if err := s.prefs.Set(ctx, visitorID, domain.ConsentKey, raw); err != nil {
		return c, fmt.Errorf("save cookie consent: %w", err)
	}
	return c, nil
}
