package domain

import "time"

// OrderStatusReceived is the status of a freshly stored order.
const OrderStatusReceived = "received"

// ServiceOrder is a submitted order as handed to a submission backend.
type ServiceOrder struct {
	ID          string            `json:"id"`
	OrderNumber string            `json:"order_number"`
	WizardID    string            `json:"wizard_id"`
	VisitorID   string            `json:"visitor_id"`
	Variant     Variant           `json:"variant"`
	Status      string            `json:"status"`
	CompanySlug string            `json:"company_slug"`
	Form        OrderForm         `json:"form"`
	Services    []ServiceOffering `json:"services"`
	TotalPrice  int64             `json:"total_price"`
	Currency    string            `json:"currency"`
	Language    string            `json:"language,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewServiceOrder snapshots the wizard's form and the priced selection.
// OrderNumber and CompanySlug are filled in by the submission backend.
func NewServiceOrder(id string, w *Wizard, catalog *Catalog, language string, now time.Time) *ServiceOrder {
	form := w.Form
	form.SelectedServiceIDs = append([]string(nil), w.Form.SelectedServiceIDs...)
	return &ServiceOrder{
		ID:         id,
		WizardID:   w.ID,
		VisitorID:  w.VisitorID,
		Variant:    w.Variant,
		Status:     OrderStatusReceived,
		Form:       form,
		Services:   form.SelectedServiceDetails(catalog),
		TotalPrice: form.TotalPrice(catalog),
		Currency:   "USD",
		Language:   language,
		CreatedAt:  now,
	}
}
