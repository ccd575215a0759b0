package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/supportiq/internal/config"
	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/events"
	"github.com/spec-kit/supportiq/internal/observability"
	"github.com/spec-kit/supportiq/internal/promotion"
	"github.com/spec-kit/supportiq/internal/repository"
	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

// PromotionService runs the tier promotion engine over the knowledge base.
type PromotionService struct {
	knowledge  repository.KnowledgeRepository
	promotions repository.PromotionRepository
	cfg        config.PromotionConfig
	events     events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// PromotionDependencies bundles collaborators for the promotion service.
type PromotionDependencies struct {
	KnowledgeRepo repository.KnowledgeRepository
	PromotionRepo repository.PromotionRepository
	Config        config.PromotionConfig
	Events        events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// NewPromotionService constructs the service.
func NewPromotionService(deps PromotionDependencies) *PromotionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{
		knowledge:  deps.KnowledgeRepo,
		promotions: deps.PromotionRepo,
		cfg:        deps.Config,
		events:     deps.Events,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// SweepResult summarizes one promotion pass.
type SweepResult struct {
	Evaluated int
	Promoted  []domain.PromotionRecord
	Failed    int
}

// Sweep evaluates every promotable entry once and commits each eligible
// promotion individually. A failure on one entry is logged and skipped so
// the rest of the batch still lands; concurrent sweeps lose version races
// cleanly and simply move on.
func (s *PromotionService) Sweep(ctx context.Context) (SweepResult, error) {
	entries, err := s.knowledge.ListActive(ctx, []domain.Tier{domain.TierL2, domain.TierL3})
	if err != nil {
		return SweepResult{}, apperrors.MapError(err)
	}

	result := SweepResult{Evaluated: len(entries)}
	for _, candidate := range promotion.Evaluate(entries, s.cfg) {
		record, err := s.commit(ctx, candidate.Entry, candidate.Rule.To, candidate.Reason, false)
		if err != nil {
			result.Failed++
			s.logger.Warn("promotion failed, continuing sweep",
				zap.String("entry_id", candidate.Entry.ID),
				zap.String("from_tier", string(candidate.Rule.From)),
				zap.String("to_tier", string(candidate.Rule.To)),
				zap.Error(err))
			continue
		}
		result.Promoted = append(result.Promoted, record)
	}

	if s.metrics != nil {
		s.metrics.RecordSweep(len(result.Promoted))
	}
	s.logger.Info("promotion sweep completed",
		zap.Int("evaluated", result.Evaluated),
		zap.Int("promoted", len(result.Promoted)),
		zap.Int("failed", result.Failed))
	return result, nil
}

// PromoteManual promotes an entry one tier up regardless of its usage and
// feedback statistics. The single-step, upward-only rules still apply.
func (s *PromotionService) PromoteManual(ctx context.Context, entryID string, toTier domain.Tier, reason string) (domain.PromotionRecord, error) {
	if !toTier.Valid() {
		return domain.PromotionRecord{}, apperrors.NewValidationError(
			fmt.Sprintf("unknown tier %q", toTier), nil)
	}

	entry, err := s.knowledge.GetByID(ctx, entryID)
	if err != nil {
		return domain.PromotionRecord{}, apperrors.MapError(err)
	}
	if !domain.CanPromoteTo(entry.Tier, toTier) {
		return domain.PromotionRecord{}, apperrors.NewConflict(
			fmt.Sprintf("cannot promote from %s to %s", entry.Tier, toTier), nil)
	}

	if reason == "" {
		reason = "manual"
	} else {
		reason = "manual: " + reason
	}
	return s.commit(ctx, *entry, toTier, reason, true)
}

// Candidates returns active entries at or above 70% of their usage
// threshold, for operator visibility ahead of the next sweep.
func (s *PromotionService) Candidates(ctx context.Context) ([]promotion.ProgressCandidate, error) {
	entries, err := s.knowledge.ListActive(ctx, []domain.Tier{domain.TierL2, domain.TierL3})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return promotion.ApproachingPromotion(entries, s.cfg), nil
}

// History returns the promotion audit trail, optionally for one entry.
func (s *PromotionService) History(ctx context.Context, entryID string, limit int) ([]domain.PromotionRecord, error) {
	records, err := s.promotions.ListRecords(ctx, entryID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

// commit writes the tier transition and its audit record, retrying once on
// a version conflict after re-checking that the transition still applies.
func (s *PromotionService) commit(ctx context.Context, entry domain.KnowledgeEntry, toTier domain.Tier, reason string, manual bool) (domain.PromotionRecord, error) {
	// the repository mints the record id and timestamp on insert
	record := domain.PromotionRecord{
		KnowledgeEntryID:       entry.ID,
		FromTier:               entry.Tier,
		ToTier:                 toTier,
		Reason:                 reason,
		UsageCountAtPromotion:  entry.UsageCount,
		AvgFeedbackAtPromotion: entry.AvgFeedbackScore,
	}

	err := s.promotions.Promote(ctx, entry.ID, entry.Version, &record)
	if errors.Is(err, repository.ErrVersionConflict) {
		fresh, readErr := s.knowledge.GetByID(ctx, entry.ID)
		if readErr != nil {
			return domain.PromotionRecord{}, apperrors.MapError(readErr)
		}
		if fresh.Tier != entry.Tier {
			return domain.PromotionRecord{}, apperrors.NewConcurrencyConflict(
				"entry was promoted concurrently", nil)
		}
		record.UsageCountAtPromotion = fresh.UsageCount
		record.AvgFeedbackAtPromotion = fresh.AvgFeedbackScore
		err = s.promotions.Promote(ctx, entry.ID, fresh.Version, &record)
		if errors.Is(err, repository.ErrVersionConflict) {
			return domain.PromotionRecord{}, apperrors.NewConcurrencyConflict(
				"knowledge entry changed concurrently", nil)
		}
	}
	if err != nil {
		return domain.PromotionRecord{}, apperrors.MapError(err)
	}

	if manual && s.metrics != nil {
		s.metrics.RecordPromotion()
	}
	s.publishPromoted(ctx, record, manual)
	s.logger.Info("knowledge entry promoted",
		zap.String("entry_id", entry.ID),
		zap.String("from_tier", string(record.FromTier)),
		zap.String("to_tier", string(record.ToTier)),
		zap.Bool("manual", manual))
	return record, nil
}

func (s *PromotionService) publishPromoted(ctx context.Context, record domain.PromotionRecord, manual bool) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, events.NewEvent(events.EventEntryPromoted, events.EntryPromotedPayload{
		KnowledgeEntryID: record.KnowledgeEntryID,
		FromTier:         record.FromTier,
		ToTier:           record.ToTier,
		Reason:           record.Reason,
		Manual:           manual,
	}))
}
