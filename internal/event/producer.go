package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/way-19/consulting19/internal/domain"
	pkgkafka "github.com/way-19/consulting19/pkg/kafka"
	"github.com/way-19/consulting19/pkg/logger"
)

// Kafka topic constants for consulting19 domain events.
const (
	TopicOrderSubmitted = "consulting19.order.submitted"
	TopicLeadCreated    = "consulting19.lead.created"
)

// Aggregate type constants.
const (
	AggregateTypeOrder = "service_order"
	AggregateTypeLead  = "lead"
)

// SourceService identifies events originating from this service.
const SourceService = "consulting19"

// OrderSubmittedData is the payload for an order.submitted event.
type OrderSubmittedData struct {
	OrderID       string             `json:"order_id"`
	OrderNumber   string             `json:"order_number"`
	WizardID      string             `json:"wizard_id"`
	Variant       string             `json:"variant"`
	CompanyName   string             `json:"company_name"`
	CompanySlug   string             `json:"company_slug"`
	ContactPerson string             `json:"contact_person"`
	Email         string             `json:"email"`
	Phone         string             `json:"phone"`
	Services      []ServiceLineData  `json:"services"`
	TotalPrice    int64              `json:"total_price"`
	Currency      string             `json:"currency"`
	Banking       *BankingDetailData `json:"banking,omitempty"`
	Language      string             `json:"language,omitempty"`
}

// ServiceLineData is one priced service of a submitted order.
type ServiceLineData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// BankingDetailData carries the banking step answers of a banking order.
type BankingDetailData struct {
	BankName      string `json:"bank_name"`
	AccountType   string `json:"account_type"`
	MonthlyVolume string `json:"monthly_volume"`
	BusinessType  string `json:"business_type"`
	RiskLevel     string `json:"risk_level"`
}

// LeadCreatedData is the payload for a lead.created event.
type LeadCreatedData struct {
	LeadID      string `json:"lead_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company,omitempty"`
	Country     string `json:"country,omitempty"`
	MessageType string `json:"message_type"`
	Subject     string `json:"subject"`
}

// Producer publishes consulting19 domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderSubmitted publishes an order.submitted event keyed by the
// order number.
func (p *Producer) PublishOrderSubmitted(ctx context.Context, order *domain.ServiceOrder) error {
	services := make([]ServiceLineData, len(order.Services))
	for i, s := range order.Services {
		services[i] = ServiceLineData{ID: s.ID, Name: s.Name, Price: s.Price}
	}

	data := OrderSubmittedData{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		WizardID:      order.WizardID,
		Variant:       string(order.Variant),
		CompanyName:   order.Form.CompanyName,
		CompanySlug:   order.CompanySlug,
		ContactPerson: order.Form.ContactPerson,
		Email:         order.Form.Email,
		Phone:         order.Form.Phone,
		Services:      services,
		TotalPrice:    order.TotalPrice,
		Currency:      order.Currency,
		Language:      order.Language,
	}
	if order.Variant == domain.VariantBanking {
		data.Banking = &BankingDetailData{
			BankName:      order.Form.BankName,
			AccountType:   order.Form.AccountType,
			MonthlyVolume: order.Form.MonthlyVolume,
			BusinessType:  order.Form.BusinessType,
			RiskLevel:     order.Form.RiskLevel,
		}
	}

	event, err := pkgkafka.NewEvent(TopicOrderSubmitted, order.OrderNumber, AggregateTypeOrder, SourceService, data,
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)),
		pkgkafka.WithVisitorID(order.VisitorID),
	)
	if err != nil {
		return fmt.Errorf("create order.submitted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderSubmitted, event); err != nil {
		return fmt.Errorf("publish order.submitted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.submitted event",
		slog.String("order_number", order.OrderNumber),
		slog.String("wizard_id", order.WizardID),
	)

	return nil
}

// PublishLeadCreated publishes a lead.created event.
func (p *Producer) PublishLeadCreated(ctx context.Context, lead *domain.ContactLead) error {
	data := LeadCreatedData{
		LeadID:      lead.ID,
		Name:        lead.Name,
		Email:       lead.Email,
		Company:     lead.Company,
		Country:     lead.Country,
		MessageType: lead.MessageType,
		Subject:     lead.Subject,
	}

	event, err := pkgkafka.NewEvent(TopicLeadCreated, lead.ID, AggregateTypeLead, SourceService, data,
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)),
		pkgkafka.WithVisitorID(lead.VisitorID),
	)
	if err != nil {
		return fmt.Errorf("create lead.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicLeadCreated, event); err != nil {
		return fmt.Errorf("publish lead.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published lead.created event",
		slog.String("lead_id", lead.ID),
	)

	return nil
}
