package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/supportiq/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Statuses []domain.TicketStatus
	Tier     *domain.Tier
	Category *string
	Limit    int
	Offset   int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	SaveEmbedding(ctx context.Context, ticketID string, embedding []float32) error
	GetEmbedding(ctx context.Context, ticketID string) ([]float32, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, title, description, status, urgency_score, urgency_level,
       sentiment_score, sentiment_label, category, assigned_tier, requester_email,
       created_at, updated_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, title, description, status, urgency_score, urgency_level,
            sentiment_score, sentiment_label, category, assigned_tier, requester_email)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.UrgencyScore,
		ticket.UrgencyLevel,
		ticket.SentimentScore,
		ticket.SentimentLabel,
		ticket.Category,
		ticket.AssignedTier,
		ticket.RequesterEmail,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, urgency_score=$2, urgency_level=$3, category=$4,
            assigned_tier=$5, resolved_at=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.UrgencyScore,
		ticket.UrgencyLevel,
		ticket.Category,
		ticket.AssignedTier,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.UrgencyScore,
		&ticket.UrgencyLevel,
		&ticket.SentimentScore,
		&ticket.SentimentLabel,
		&ticket.Category,
		&ticket.AssignedTier,
		&ticket.RequesterEmail,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Tier != nil {
		args = append(args, *filter.Tier)
		clauses = append(clauses, fmt.Sprintf("assigned_tier=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ExternalKey,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.UrgencyScore,
			&ticket.UrgencyLevel,
			&ticket.SentimentScore,
			&ticket.SentimentLabel,
			&ticket.Category,
			&ticket.AssignedTier,
			&ticket.RequesterEmail,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) SaveEmbedding(ctx context.Context, ticketID string, embedding []float32) error {
	const query = `
        INSERT INTO ticket_embeddings (ticket_id, embedding) VALUES ($1,$2)
        ON CONFLICT (ticket_id) DO UPDATE SET embedding=EXCLUDED.embedding`
	_, err := r.pool.Exec(ctx, query, ticketID, embedding)
	return err
}

func (r *ticketRepository) GetEmbedding(ctx context.Context, ticketID string) ([]float32, error) {
	const query = `SELECT embedding FROM ticket_embeddings WHERE ticket_id=$1`
	var embedding []float32
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(&embedding); err != nil {
		return nil, err
	}
	return embedding, nil
}
