package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/supportiq/internal/domain"
)

// PromotionRepository commits tier transitions and reads the audit trail.
type PromotionRepository interface {
	// Promote updates the entry's tier and appends the promotion record as
	// one transaction, conditioned on the version the caller read. The
	// version check makes concurrent sweeps lose cleanly with
	// ErrVersionConflict instead of double-promoting.
	Promote(ctx context.Context, entryID string, version int64, record *domain.PromotionRecord) error
	ListRecords(ctx context.Context, entryID string, limit int) ([]domain.PromotionRecord, error)
}

type promotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository instantiates repository.
func NewPromotionRepository(pool *pgxpool.Pool) PromotionRepository {
	return &promotionRepository{pool: pool}
}

func (r *promotionRepository) Promote(ctx context.Context, entryID string, version int64, record *domain.PromotionRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const updateQuery = `
        UPDATE knowledge_entries
        SET tier=$1, version=version+1, updated_at=NOW()
        WHERE id=$2 AND tier=$3 AND version=$4`
	cmd, err := tx.Exec(ctx, updateQuery, record.ToTier, entryID, record.FromTier, version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	const insertQuery = `
        INSERT INTO promotion_records (knowledge_entry_id, from_tier, to_tier, reason,
            usage_count_at_promotion, avg_feedback_at_promotion)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, promoted_at`
	if err := tx.QueryRow(ctx, insertQuery,
		record.KnowledgeEntryID,
		record.FromTier,
		record.ToTier,
		record.Reason,
		record.UsageCountAtPromotion,
		record.AvgFeedbackAtPromotion,
	).Scan(&record.ID, &record.PromotedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *promotionRepository) ListRecords(ctx context.Context, entryID string, limit int) ([]domain.PromotionRecord, error) {
	base := `
        SELECT id, knowledge_entry_id, from_tier, to_tier, reason,
               usage_count_at_promotion, avg_feedback_at_promotion, promoted_at
        FROM promotion_records`
	args := []any{}
	if entryID != "" {
		args = append(args, entryID)
		base += " WHERE knowledge_entry_id=$1"
	}
	if limit <= 0 {
		limit = 50
	}
	base += fmt.Sprintf(" ORDER BY promoted_at DESC LIMIT %d", limit)

	rows, err := r.pool.Query(ctx, base, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PromotionRecord
	for rows.Next() {
		var record domain.PromotionRecord
		if err := rows.Scan(
			&record.ID,
			&record.KnowledgeEntryID,
			&record.FromTier,
			&record.ToTier,
			&record.Reason,
			&record.UsageCountAtPromotion,
			&record.AvgFeedbackAtPromotion,
			&record.PromotedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
