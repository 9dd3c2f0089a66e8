package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/pkg/database"
	apperrors "github.com/way-19/consulting19/pkg/errors"
)

const insertOrderSQL = `
	INSERT INTO service_orders (id, order_number, wizard_id, visitor_id, variant, status, company_name, company_slug, contact_email, form, services, total_price, currency, language, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

const selectOrderColumns = `
	SELECT id, order_number, wizard_id, visitor_id, variant, status, company_slug, form, services, total_price, currency, COALESCE(language, ''), created_at
	FROM service_orders`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a submitted order. The form and the priced service snapshot
// are stored as JSONB so later catalog changes do not rewrite history.
func (r *OrderRepository) Create(ctx context.Context, o *domain.ServiceOrder) (err error) {
	ctx, end := database.TraceQuery(ctx, "postgresql", "InsertServiceOrder", insertOrderSQL)
	defer func() { end(err) }()

	formJSON, err := json.Marshal(o.Form)
	if err != nil {
		return fmt.Errorf("marshal order form: %w", err)
	}
	services := o.Services
	if services == nil {
		services = []domain.ServiceOffering{}
	}
	servicesJSON, err := json.Marshal(services)
	if err != nil {
		return fmt.Errorf("marshal order services: %w", err)
	}

	var language *string
	if o.Language != "" {
		language = &o.Language
	}

	_, err = r.pool.Exec(ctx, insertOrderSQL,
		o.ID,
		o.OrderNumber,
		o.WizardID,
		o.VisitorID,
		string(o.Variant),
		o.Status,
		o.Form.CompanyName,
		o.CompanySlug,
		o.Form.Email,
		formJSON,
		servicesJSON,
		o.TotalPrice,
		o.Currency,
		language,
		o.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("an order for wizard %s already exists", o.WizardID))
		}
		return fmt.Errorf("insert service order: %w", err)
	}

	return nil
}

// GetByNumber retrieves an order by its public order number.
func (r *OrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*domain.ServiceOrder, error) {
	o, err := r.getOne(ctx, "GetServiceOrderByNumber", "order_number", orderNumber)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFound("order", orderNumber)
	}
	return o, err
}

// GetByWizardID retrieves the order created from the given wizard.
func (r *OrderRepository) GetByWizardID(ctx context.Context, wizardID string) (*domain.ServiceOrder, error) {
	o, err := r.getOne(ctx, "GetServiceOrderByWizard", "wizard_id", wizardID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFound("order", wizardID)
	}
	return o, err
}

func (r *OrderRepository) getOne(ctx context.Context, operation, column, value string) (o *domain.ServiceOrder, err error) {
	query := selectOrderColumns + "\n\tWHERE " + column + " = $1"

	ctx, end := database.TraceQuery(ctx, "postgresql", operation, query)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	var (
		order        domain.ServiceOrder
		variant      string
		formJSON     []byte
		servicesJSON []byte
	)

	err = r.pool.QueryRow(ctx, query, value).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.WizardID,
		&order.VisitorID,
		&variant,
		&order.Status,
		&order.CompanySlug,
		&formJSON,
		&servicesJSON,
		&order.TotalPrice,
		&order.Currency,
		&order.Language,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan service order: %w", err)
	}
	order.Variant = domain.Variant(variant)

	if len(formJSON) > 0 {
		if err := json.Unmarshal(formJSON, &order.Form); err != nil {
			return nil, fmt.Errorf("unmarshal order form: %w", err)
		}
	}
	if len(servicesJSON) > 0 && string(servicesJSON) != "null" {
		if err := json.Unmarshal(servicesJSON, &order.Services); err != nil {
			return nil, fmt.Errorf("unmarshal order services: %w", err)
		}
	}
	if order.Services == nil {
		order.Services = []domain.ServiceOffering{}
	}

	return &order, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
