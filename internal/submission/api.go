package submission

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/way-19/consulting19/internal/domain"
	apperrors "github.com/way-19/consulting19/pkg/errors"
	"github.com/way-19/consulting19/pkg/httpclient"
)

const orderAPIService = "order-api"

// APISubmitter posts orders to an external order intake API.
type APISubmitter struct {
	client httpclient.Doer
	url    string
}

// NewAPISubmitter creates a backend that POSTs to url through client,
// normally a circuit-breaking httpclient.
func NewAPISubmitter(client httpclient.Doer, url string) *APISubmitter {
	return &APISubmitter{client: client, url: strings.TrimRight(url, "/")}
}

// Name implements Submitter.
func (s *APISubmitter) Name() string { return "api" }

type orderRequest struct {
	WizardID   string                   `json:"wizard_id"`
	Variant    string                   `json:"variant"`
	Form       domain.OrderForm         `json:"form"`
	Services   []domain.ServiceOffering `json:"services"`
	TotalPrice int64                    `json:"total_price"`
	Currency   string                   `json:"currency"`
	Language   string                   `json:"language,omitempty"`
}

type orderResponse struct {
	Data struct {
		OrderNumber string `json:"order_number"`
		Reference   string `json:"reference"`
	} `json:"data"`
}

// Submit posts the order. The wizard id travels as the idempotency key so
// the downstream can deduplicate retries.
func (s *APISubmitter) Submit(ctx context.Context, order *domain.ServiceOrder) (*Result, error) {
	req, err := httpclient.NewJSONRequest(ctx, http.MethodPost, s.url, orderRequest{
		WizardID:   order.WizardID,
		Variant:    string(order.Variant),
		Form:       order.Form,
		Services:   order.Services,
		TotalPrice: order.TotalPrice,
		Currency:   order.Currency,
		Language:   order.Language,
	})
	if err != nil {
		return nil, err
	}
	req.Header.Set(httpclient.IdempotencyKeyHeader, order.WizardID)

	var resp orderResponse
	if err := httpclient.DoJSON(ctx, s.client, req, orderAPIService, &resp); err != nil {
		if ue, ok := httpclient.AsUpstreamError(err); ok {
			return nil, apperrors.ServiceUnavailable(fmt.Sprintf("%s is unavailable (status %d)", orderAPIService, ue.Status))
		}
		return nil, fmt.Errorf("submit order: %w", err)
	}

	ref := resp.Data.OrderNumber
	if ref == "" {
		ref = resp.Data.Reference
	}
	if ref == "" {
		return nil, fmt.Errorf("submit order: %s response carried no reference", orderAPIService)
	}
	order.OrderNumber = ref
	return &Result{Reference: ref}, nil
}
