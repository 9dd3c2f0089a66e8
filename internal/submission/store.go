package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/internal/repository"
	apperrors "github.com/way-19/consulting19/pkg/errors"
	"github.com/way-19/consulting19/pkg/slug"
)

// OrderEventPublisher is the part of event.Producer the store backend needs.
type OrderEventPublisher interface {
	PublishOrderSubmitted(ctx context.Context, order *domain.ServiceOrder) error
}

// StoreSubmitter persists orders in PostgreSQL and announces them on Kafka.
type StoreSubmitter struct {
	orders    repository.OrderRepository
	publisher OrderEventPublisher
	logger    *slog.Logger
}

// NewStoreSubmitter creates the default submission backend.
func NewStoreSubmitter(orders repository.OrderRepository, publisher OrderEventPublisher, logger *slog.Logger) *StoreSubmitter {
	return &StoreSubmitter{
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

// Name implements Submitter.
func (s *StoreSubmitter) Name() string { return "store" }

// Submit stores the order. A wizard that already produced an order (an
// earlier attempt that timed out after the insert) yields that order's
// number instead of a duplicate.
func (s *StoreSubmitter) Submit(ctx context.Context, order *domain.ServiceOrder) (*Result, error) {
	if order.OrderNumber == "" {
		order.OrderNumber = NewOrderNumber(order.CreatedAt)
	}
	order.CompanySlug = slug.Generate(order.Form.CompanyName)

	if err := s.orders.Create(ctx, order); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("store order: %w", err)
		}
		existing, getErr := s.orders.GetByWizardID(ctx, order.WizardID)
		if getErr != nil {
			return nil, fmt.Errorf("load existing order: %w", getErr)
		}
		s.logger.InfoContext(ctx, "order already stored for wizard",
			slog.String("wizard_id", order.WizardID),
			slog.String("order_number", existing.OrderNumber),
		)
		return &Result{Reference: existing.OrderNumber}, nil
	}

	if err := s.publisher.PublishOrderSubmitted(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.submitted event",
			slog.String("order_number", order.OrderNumber),
			slog.String("error", err.Error()),
		)
		// The stored order is authoritative; do not fail the submission.
	}

	return &Result{Reference: order.OrderNumber}, nil
}
