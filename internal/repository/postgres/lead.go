package postgres

import (
	"context"
	"fmt"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/pkg/database"
)

const insertLeadSQL = `
	INSERT INTO leads (id, name, email, company, country, message_type, subject, message, visitor_id, language, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// LeadRepository implements repository.LeadRepository using PostgreSQL.
type LeadRepository struct {
	pool database.DBTX
}

// NewLeadRepository creates a new PostgreSQL-backed lead repository.
func NewLeadRepository(pool database.DBTX) *LeadRepository {
	return &LeadRepository{pool: pool}
}

// Create inserts a contact form submission.
func (r *LeadRepository) Create(ctx context.Context, lead *domain.ContactLead) (err error) {
	ctx, end := database.TraceQuery(ctx, "postgresql", "InsertLead", insertLeadSQL)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, insertLeadSQL,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Company,
		lead.Country,
		lead.MessageType,
		lead.Subject,
		lead.Message,
		nullString(lead.VisitorID),
		nullString(lead.Language),
		lead.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
