package submission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/way-19/consulting19/internal/domain"
)

// Result is a backend's acknowledgement of a submitted order.
type Result struct {
	// Reference is the order number shown to the customer.
	Reference string
}

// Submitter defines the interface for order submission backends.
type Submitter interface {
	// Name returns the backend name ("store", "api").
	Name() string

	// Submit hands the order to the backend. Implementations must be safe to
	// call again for the same wizard after a failure or timeout.
	Submit(ctx context.Context, order *domain.ServiceOrder) (*Result, error)
}

// NewOrderNumber returns an order number of the form C19-YYYYMMDD-XXXXXX.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("C19-%s-%s", now.UTC().Format("20060102"), suffix)
}
