package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/internal/repository"
	apperrors "github.com/way-19/consulting19/pkg/errors"
)

// LeadEventPublisher is the part of event.Producer the lead service needs.
type LeadEventPublisher interface {
	PublishLeadCreated(ctx context.Context, lead *domain.ContactLead) error
}

// LeadService captures contact form submissions.
type LeadService struct {
	repo      repository.LeadRepository
	publisher LeadEventPublisher
	metrics   *Metrics
	logger    *slog.Logger
}

// NewLeadService creates a new lead service. metrics may be nil.
func NewLeadService(repo repository.LeadRepository, publisher LeadEventPublisher, metrics *Metrics, logger *slog.Logger) *LeadService {
	return &LeadService{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Create validates and stores a lead.
func (s *LeadService) Create(ctx context.Context, visitorID, language string, lead domain.ContactLead) (*domain.ContactLead, error) {
	if errs := lead.Validate(); len(errs) > 0 {
		return nil, apperrors.Validation("contact form is invalid", errs)
	}

	lead.ID = uuid.New().String()
	lead.VisitorID = visitorID
	lead.Language = language
	lead.CreatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, &lead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	s.metrics.leadCreated()

	if err := s.publisher.PublishLeadCreated(ctx, &lead); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish lead.created event",
			slog.String("lead_id", lead.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "lead created",
		slog.String("lead_id", lead.ID),
		slog.String("message_type", lead.MessageType),
	)
	return &lead, nil
}
