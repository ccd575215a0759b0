package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/supportiq/internal/domain"
)

// ResolutionRepository encapsulates resolution persistence. Resolutions are
// append-only apart from late feedback attachment.
type ResolutionRepository interface {
	Create(ctx context.Context, resolution *domain.Resolution) error
	GetByID(ctx context.Context, id string) (*domain.Resolution, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Resolution, error)
	AttachFeedback(ctx context.Context, id string, score int, comment string) error
}

type resolutionRepository struct {
	pool *pgxpool.Pool
}

// NewResolutionRepository instantiates repository.
func NewResolutionRepository(pool *pgxpool.Pool) ResolutionRepository {
	return &resolutionRepository{pool: pool}
}

const resolutionColumns = `id, ticket_id, knowledge_entry_id, solution, source,
       resolution_time_minutes, feedback_score, feedback_comment, resolved_by, created_at`

func (r *resolutionRepository) Create(ctx context.Context, resolution *domain.Resolution) error {
	const query = `
        INSERT INTO resolutions (ticket_id, knowledge_entry_id, solution, source,
            resolution_time_minutes, feedback_score, feedback_comment, resolved_by)
        VALUES ($1, NULLIF($2,''), $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		resolution.TicketID,
		resolution.KnowledgeEntryID,
		resolution.Solution,
		resolution.Source,
		resolution.ResolutionTimeMinutes,
		resolution.FeedbackScore,
		resolution.FeedbackComment,
		resolution.ResolvedBy,
	).Scan(&resolution.ID, &resolution.CreatedAt)
}

func (r *resolutionRepository) GetByID(ctx context.Context, id string) (*domain.Resolution, error) {
	query := `SELECT ` + resolutionColumns + ` FROM resolutions WHERE id=$1`
	var resolution domain.Resolution
	var entryID *string
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&resolution.ID,
		&resolution.TicketID,
		&entryID,
		&resolution.Solution,
		&resolution.Source,
		&resolution.ResolutionTimeMinutes,
		&resolution.FeedbackScore,
		&resolution.FeedbackComment,
		&resolution.ResolvedBy,
		&resolution.CreatedAt,
	); err != nil {
		return nil, err
	}
	if entryID != nil {
		resolution.KnowledgeEntryID = *entryID
	}
	return &resolution, nil
}

func (r *resolutionRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Resolution, error) {
	query := `SELECT ` + resolutionColumns + ` FROM resolutions WHERE ticket_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Resolution
	for rows.Next() {
		var resolution domain.Resolution
		var entryID *string
		if err := rows.Scan(
			&resolution.ID,
			&resolution.TicketID,
			&entryID,
			&resolution.Solution,
			&resolution.Source,
			&resolution.ResolutionTimeMinutes,
			&resolution.FeedbackScore,
			&resolution.FeedbackComment,
			&resolution.ResolvedBy,
			&resolution.CreatedAt,
		); err != nil {
			return nil, err
		}
		if entryID != nil {
			resolution.KnowledgeEntryID = *entryID
		}
		result = append(result, resolution)
	}
	return result, rows.Err()
}

func (r *resolutionRepository) AttachFeedback(ctx context.Context, id string, score int, comment string) error {
	const query = `
        UPDATE resolutions SET feedback_score=$1, feedback_comment=$2
        WHERE id=$3 AND feedback_score IS NULL`
	cmd, err := r.pool.Exec(ctx, query, score, comment, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
