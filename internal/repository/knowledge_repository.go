package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/supportiq/internal/domain"
)

// ErrVersionConflict signals that an optimistic-concurrency write observed a
// stale version. Callers re-read and retry once before surfacing a conflict.
var ErrVersionConflict = errors.New("stale entry version")

// KnowledgeFilter captures listing parameters.
type KnowledgeFilter struct {
	Tier     *domain.Tier
	Category *string
	Active   *bool
	Limit    int
	Offset   int
}

// EntryStats carries the feedback statistics written under a version check.
type EntryStats struct {
	FeedbackCount    int
	AvgFeedbackScore float64
	SuccessRate      float64
}

// KnowledgeRepository encapsulates knowledge entry persistence.
type KnowledgeRepository interface {
	Create(ctx context.Context, entry *domain.KnowledgeEntry) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error)
	List(ctx context.Context, filter KnowledgeFilter) ([]domain.KnowledgeEntry, error)
	// ListActive returns the active corpus snapshot, embeddings included,
	// optionally restricted to the given tiers.
	ListActive(ctx context.Context, tiers []domain.Tier) ([]domain.KnowledgeEntry, error)
	// IncrementUsage bumps usage_count by one as a single atomic statement.
	IncrementUsage(ctx context.Context, id string) error
	// UpdateStats writes feedback statistics conditioned on the version the
	// caller read; ErrVersionConflict on a lost race.
	UpdateStats(ctx context.Context, id string, version int64, stats EntryStats) error
	Categories(ctx context.Context) ([]string, error)
}

type knowledgeRepository struct {
	pool *pgxpool.Pool
}

// NewKnowledgeRepository instantiates repository.
func NewKnowledgeRepository(pool *pgxpool.Pool) KnowledgeRepository {
	return &knowledgeRepository{pool: pool}
}

const knowledgeColumns = `id, external_key, tier, title, content, keywords, category,
       usage_count, feedback_count, avg_feedback_score, success_rate,
       embedding, active, version, created_at, updated_at`

func (r *knowledgeRepository) Create(ctx context.Context, entry *domain.KnowledgeEntry) error {
	const query = `
        INSERT INTO knowledge_entries (external_key, tier, title, content, keywords, category, embedding, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		entry.ExternalKey,
		entry.Tier,
		entry.Title,
		entry.Content,
		entry.Keywords,
		entry.Category,
		entry.Embedding,
		entry.Active,
	).Scan(&entry.ID, &entry.Version, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *knowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error) {
	query := `SELECT ` + knowledgeColumns + ` FROM knowledge_entries WHERE id=$1`
	var entry domain.KnowledgeEntry
	if err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&entry)...); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *knowledgeRepository) List(ctx context.Context, filter KnowledgeFilter) ([]domain.KnowledgeEntry, error) {
	base := `SELECT ` + knowledgeColumns + ` FROM knowledge_entries`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Tier != nil {
		args = append(args, *filter.Tier)
		clauses = append(clauses, fmt.Sprintf("tier=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY usage_count DESC, created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *knowledgeRepository) ListActive(ctx context.Context, tiers []domain.Tier) ([]domain.KnowledgeEntry, error) {
	base := `SELECT ` + knowledgeColumns + ` FROM knowledge_entries WHERE active=TRUE`
	args := []any{}
	if len(tiers) > 0 {
		placeholders := make([]string, len(tiers))
		for i, tier := range tiers {
			args = append(args, tier)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		base += fmt.Sprintf(" AND tier IN (%s)", strings.Join(placeholders, ","))
	}

	rows, err := r.pool.Query(ctx, base, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *knowledgeRepository) IncrementUsage(ctx context.Context, id string) error {
	const query = `
        UPDATE knowledge_entries
        SET usage_count=usage_count+1, version=version+1, updated_at=NOW()
        WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *knowledgeRepository) UpdateStats(ctx context.Context, id string, version int64, stats EntryStats) error {
	const query = `
        UPDATE knowledge_entries
        SET feedback_count=$1, avg_feedback_score=$2, success_rate=$3, version=version+1, updated_at=NOW()
        WHERE id=$4 AND version=$5`
	cmd, err := r.pool.Exec(ctx, query,
		stats.FeedbackCount,
		stats.AvgFeedbackScore,
		stats.SuccessRate,
		id,
		version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *knowledgeRepository) Categories(ctx context.Context) ([]string, error) {
	const query = `
        SELECT DISTINCT category FROM knowledge_entries
        WHERE active=TRUE AND category <> '' ORDER BY category`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func scanTargets(entry *domain.KnowledgeEntry) []any {
	return []any{
		&entry.ID,
		&entry.ExternalKey,
		&entry.Tier,
		&entry.Title,
		&entry.Content,
		&entry.Keywords,
		&entry.Category,
		&entry.UsageCount,
		&entry.FeedbackCount,
		&entry.AvgFeedbackScore,
		&entry.SuccessRate,
		&entry.Embedding,
		&entry.Active,
		&entry.Version,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	}
}

func scanEntries(rows pgx.Rows) ([]domain.KnowledgeEntry, error) {
	var result []domain.KnowledgeEntry
	for rows.Next() {
		var entry domain.KnowledgeEntry
		if err := rows.Scan(scanTargets(&entry)...); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
