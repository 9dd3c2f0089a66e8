package repository

import (
	"context"
	"time"

	"github.com/way-19/consulting19/internal/domain"
)

// WizardRepository persists order wizard drafts.
type WizardRepository interface {
	// Get retrieves a draft by id. Expired or unknown drafts yield ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Wizard, error)

	// Save stores the draft, overwriting any previous value, and refreshes its TTL.
	Save(ctx context.Context, w *domain.Wizard) error

	// SaveIfVersion stores the draft only if the stored version equals
	// expectedVersion (0 meaning "not stored yet"). On success w.Version is
	// incremented. It reports whether the write happened.
	SaveIfVersion(ctx context.Context, w *domain.Wizard, expectedVersion int) (bool, error)

	// Delete removes a draft.
	Delete(ctx context.Context, id string) error
}

// SubmitLock guards a wizard against concurrent submissions.
type SubmitLock interface {
	// Acquire takes the lock for id and returns the token identifying this
	// holder. ok is false if the lock is already held.
	Acquire(ctx context.Context, id string, ttl time.Duration) (token string, ok bool, err error)

	// Release frees the lock for id only while it is still held by token.
	Release(ctx context.Context, id, token string) error

	// Held reports whether the lock for id is currently taken.
	Held(ctx context.Context, id string) (bool, error)
}

// ComparisonRepository persists package comparison selections per visitor
// and country.
type ComparisonRepository interface {
	Get(ctx context.Context, visitorID, country string) (*domain.ComparisonSelection, error)
	Save(ctx context.Context, visitorID string, s *domain.ComparisonSelection) error
}

// PreferenceRepository is a per-visitor string key/value store.
type PreferenceRepository interface {
	// Get returns "" with a nil error when the key is absent.
	Get(ctx context.Context, visitorID, key string) (string, error)
	Set(ctx context.Context, visitorID, key, value string) error
}

// OrderRepository stores submitted service orders.
type OrderRepository interface {
	// Create inserts a new order. A duplicate wizard id yields ErrConflict.
	Create(ctx context.Context, o *domain.ServiceOrder) error

	// GetByNumber retrieves an order by its public order number.
	GetByNumber(ctx context.Context, orderNumber string) (*domain.ServiceOrder, error)

	// GetByWizardID retrieves the order created from a wizard.
	GetByWizardID(ctx context.Context, wizardID string) (*domain.ServiceOrder, error)
}

// BlogRepository reads published blog posts.
type BlogRepository interface {
	// ListPublished returns one page of published posts, newest first, and
	// the total number of matching posts.
	ListPublished(ctx context.Context, filter domain.BlogFilter) ([]domain.BlogPost, int, error)

	// GetPublishedBySlug retrieves a published post.
	GetPublishedBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
}

// LeadRepository stores contact form submissions.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.ContactLead) error
}
