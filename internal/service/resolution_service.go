package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/events"
	"github.com/spec-kit/supportiq/internal/repository"
	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

// Feedback scores are a 1..5 rating; 4 and above counts as a success.
const (
	minFeedbackScore   = 1
	maxFeedbackScore   = 5
	successScoreCutoff = 4
	statsRetryAttempts = 2
)

// ResolutionService records ticket resolutions and folds feedback into
// knowledge entry statistics.
type ResolutionService struct {
	tickets     repository.TicketRepository
	resolutions repository.ResolutionRepository
	knowledge   repository.KnowledgeRepository
	events      events.Dispatcher
	logger      *zap.Logger
}

// ResolutionDependencies bundles collaborators for the resolution service.
type ResolutionDependencies struct {
	TicketRepo     repository.TicketRepository
	ResolutionRepo repository.ResolutionRepository
	KnowledgeRepo  repository.KnowledgeRepository
	Events         events.Dispatcher
	Logger         *zap.Logger
}

// NewResolutionService constructs the service.
func NewResolutionService(deps ResolutionDependencies) *ResolutionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolutionService{
		tickets:     deps.TicketRepo,
		resolutions: deps.ResolutionRepo,
		knowledge:   deps.KnowledgeRepo,
		events:      deps.Events,
		logger:      logger,
	}
}

// ResolveTicketInput carries resolution fields. KnowledgeEntryID is empty
// for manual resolutions; FeedbackScore may be provided immediately or
// attached later through RecordFeedback.
type ResolveTicketInput struct {
	TicketID         string
	KnowledgeEntryID string
	Solution         string
	ResolvedBy       string
	FeedbackScore    *int
	FeedbackComment  string
}

// ResolveTicket marks a ticket resolved and records how. When the solution
// came from a knowledge entry its usage counter is bumped, and any immediate
// feedback is folded into the entry's statistics.
func (s *ResolutionService) ResolveTicket(ctx context.Context, input ResolveTicketInput) (domain.Resolution, error) {
	if strings.TrimSpace(input.Solution) == "" {
		return domain.Resolution{}, apperrors.NewValidationError("solution is required", nil)
	}
	if input.FeedbackScore != nil {
		if err := validateFeedbackScore(*input.FeedbackScore); err != nil {
			return domain.Resolution{}, err
		}
	}

	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		return domain.Resolution{}, apperrors.MapError(err)
	}
	if !domain.ValidStatusTransition(ticket.Status, domain.TicketStatusResolved) {
		return domain.Resolution{}, apperrors.NewConflict(
			fmt.Sprintf("ticket in status %q cannot be resolved", ticket.Status), nil)
	}

	source := domain.ResolutionSourceManual
	var entry *domain.KnowledgeEntry
	if input.KnowledgeEntryID != "" {
		entry, err = s.knowledge.GetByID(ctx, input.KnowledgeEntryID)
		if err != nil {
			return domain.Resolution{}, apperrors.MapError(err)
		}
		source = domain.SourceForTier(entry.Tier)
	}

	now := time.Now().UTC()
	resolution := domain.Resolution{
		ID:                    uuid.NewString(),
		TicketID:              ticket.ID,
		KnowledgeEntryID:      input.KnowledgeEntryID,
		Solution:              input.Solution,
		Source:                source,
		ResolutionTimeMinutes: int(now.Sub(ticket.CreatedAt).Minutes()),
		FeedbackScore:         input.FeedbackScore,
		FeedbackComment:       input.FeedbackComment,
		ResolvedBy:            input.ResolvedBy,
		CreatedAt:             now,
	}
	if err := s.resolutions.Create(ctx, &resolution); err != nil {
		return domain.Resolution{}, apperrors.MapError(err)
	}

	ticket.Status = domain.TicketStatusResolved
	ticket.ResolvedAt = &now
	ticket.UpdatedAt = now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return domain.Resolution{}, apperrors.MapError(err)
	}

	if entry != nil {
		if err := s.knowledge.IncrementUsage(ctx, entry.ID); err != nil {
			s.logger.Warn("failed to increment knowledge usage",
				zap.String("entry_id", entry.ID), zap.Error(err))
		}
		if input.FeedbackScore != nil {
			if err := s.applyFeedback(ctx, entry.ID, resolution.ID, *input.FeedbackScore); err != nil {
				return domain.Resolution{}, err
			}
		}
	}

	s.publishResolved(ctx, resolution)
	s.logger.Info("ticket resolved",
		zap.String("ticket_id", ticket.ID),
		zap.String("resolution_id", resolution.ID),
		zap.String("source", string(resolution.Source)),
		zap.Int("resolution_time_minutes", resolution.ResolutionTimeMinutes))
	return resolution, nil
}

// RecordFeedback attaches a rating to an existing resolution and updates the
// backing knowledge entry's statistics. Feedback is write-once.
func (s *ResolutionService) RecordFeedback(ctx context.Context, resolutionID string, score int, comment string) error {
	if err := validateFeedbackScore(score); err != nil {
		return err
	}

	resolution, err := s.resolutions.GetByID(ctx, resolutionID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if resolution.FeedbackScore != nil {
		return apperrors.NewConflict("feedback already recorded for this resolution", nil)
	}

	if err := s.resolutions.AttachFeedback(ctx, resolutionID, score, comment); err != nil {
		return apperrors.MapError(err)
	}
	if resolution.KnowledgeEntryID != "" {
		if err := s.applyFeedback(ctx, resolution.KnowledgeEntryID, resolutionID, score); err != nil {
			return err
		}
	}
	return nil
}

// ListByTicket returns a ticket's resolutions.
func (s *ResolutionService) ListByTicket(ctx context.Context, ticketID string) ([]domain.Resolution, error) {
	resolutions, err := s.resolutions.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return resolutions, nil
}

// applyFeedback folds one rating into the entry's running statistics with an
// incremental mean, retrying once when a concurrent writer won the version
// race.
func (s *ResolutionService) applyFeedback(ctx context.Context, entryID, resolutionID string, score int) error {
	for attempt := 0; attempt < statsRetryAttempts; attempt++ {
		entry, err := s.knowledge.GetByID(ctx, entryID)
		if err != nil {
			return apperrors.MapError(err)
		}

		stats := nextStats(entry, score)
		err = s.knowledge.UpdateStats(ctx, entryID, entry.Version, stats)
		if err == nil {
			s.publishFeedback(ctx, resolutionID, entryID, score, stats.AvgFeedbackScore)
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return apperrors.MapError(err)
		}
		s.logger.Debug("feedback stats write lost version race, retrying",
			zap.String("entry_id", entryID))
	}
	return apperrors.NewConcurrencyConflict("knowledge entry statistics changed concurrently", nil)
}

func nextStats(entry *domain.KnowledgeEntry, score int) repository.EntryStats {
	count := entry.FeedbackCount + 1
	avg := entry.AvgFeedbackScore + (float64(score)-entry.AvgFeedbackScore)/float64(count)

	successes := entry.SuccessRate * float64(entry.FeedbackCount)
	if score >= successScoreCutoff {
		successes++
	}
	return repository.EntryStats{
		FeedbackCount:    count,
		AvgFeedbackScore: avg,
		SuccessRate:      successes / float64(count),
	}
}

func (s *ResolutionService) publishResolved(ctx context.Context, resolution domain.Resolution) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, events.NewEvent(events.EventTicketResolved, events.TicketResolvedPayload{
		TicketID:         resolution.TicketID,
		ResolutionID:     resolution.ID,
		Source:           resolution.Source,
		KnowledgeEntryID: resolution.KnowledgeEntryID,
	}))
}

func (s *ResolutionService) publishFeedback(ctx context.Context, resolutionID, entryID string, score int, newAverage float64) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, events.NewEvent(events.EventFeedbackRecorded, events.FeedbackRecordedPayload{
		ResolutionID:     resolutionID,
		KnowledgeEntryID: entryID,
		Score:            score,
		NewAverage:       newAverage,
	}))
}

func validateFeedbackScore(score int) error {
	if score < minFeedbackScore || score > maxFeedbackScore {
		return apperrors.NewDataIntegrity(
			fmt.Sprintf("feedback score must be between %d and %d", minFeedbackScore, maxFeedbackScore), nil)
	}
	return nil
}
