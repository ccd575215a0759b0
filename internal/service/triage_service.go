package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/events"
	"github.com/spec-kit/supportiq/internal/observability"
	"github.com/spec-kit/supportiq/internal/provider"
	"github.com/spec-kit/supportiq/internal/repository"
	"github.com/spec-kit/supportiq/internal/search"
	"github.com/spec-kit/supportiq/internal/urgency"
	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

// TriageService runs the full intake pipeline: sentiment, urgency scoring,
// tier routing, persistence, and suggested solutions.
type TriageService struct {
	tickets   repository.TicketRepository
	engine    *urgency.Engine
	sentiment provider.SentimentClassifier
	embedder  provider.Embedder
	searcher  *SearchService
	events    events.Dispatcher
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// TriageDependencies bundles collaborators for the triage service.
type TriageDependencies struct {
	TicketRepo repository.TicketRepository
	Engine     *urgency.Engine
	Sentiment  provider.SentimentClassifier
	Embedder   provider.Embedder
	Searcher   *SearchService
	Events     events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTriageService constructs the service.
func NewTriageService(deps TriageDependencies) *TriageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriageService{
		tickets:   deps.TicketRepo,
		engine:    deps.Engine,
		sentiment: deps.Sentiment,
		embedder:  deps.Embedder,
		searcher:  deps.Searcher,
		events:    deps.Events,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

// CreateTicketInput carries raw intake fields.
type CreateTicketInput struct {
	Title          string
	Description    string
	Category       string
	RequesterEmail string
}

// TriageOutcome is the result of a full intake run.
type TriageOutcome struct {
	Ticket      domain.Ticket
	Urgency     urgency.Result
	Sentiment   provider.Sentiment
	Suggestions []search.Ranked
	Degraded    bool
}

// CreateTicket triages and persists a new ticket. Provider failures degrade
// the result instead of rejecting the ticket: a neutral sentiment stands in
// for a failed classification, and a failed embedding skips suggestions.
func (s *TriageService) CreateTicket(ctx context.Context, input CreateTicketInput) (TriageOutcome, error) {
	if err := validateTicketInput(input); err != nil {
		return TriageOutcome{}, err
	}

	combined := strings.TrimSpace(input.Title + " " + input.Description)
	degraded := false

	sentiment, err := s.sentiment.Classify(ctx, combined)
	if err != nil {
		s.logger.Warn("sentiment classification failed, using neutral fallback", zap.Error(err))
		sentiment = provider.Sentiment{Label: provider.SentimentNeutral, Score: 0, Confidence: 0}
		degraded = true
	}

	result := s.engine.Evaluate(sentiment.Label, sentiment.Score, combined, input.Category)
	if result.SentimentAnomaly {
		s.logger.Warn("sentiment score out of range, treated as neutral",
			zap.Float64("score", sentiment.Score))
		degraded = true
	}

	now := time.Now().UTC()
	ticket := domain.Ticket{
		ID:             uuid.NewString(),
		ExternalKey:    generateTicketKey(),
		Title:          input.Title,
		Description:    input.Description,
		Status:         domain.TicketStatusOpen,
		UrgencyScore:   result.Score,
		UrgencyLevel:   result.Level,
		SentimentScore: sentiment.Score,
		SentimentLabel: sentiment.Label,
		Category:       result.EffectiveCategory,
		AssignedTier:   result.Tier,
		RequesterEmail: input.RequesterEmail,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.tickets.Create(ctx, &ticket); err != nil {
		return TriageOutcome{}, apperrors.MapError(err)
	}

	var suggestions []search.Ranked
	vector, err := s.embedder.Embed(ctx, combined)
	if err != nil {
		s.logger.Warn("ticket embedding failed, skipping suggestions",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		degraded = true
	} else {
		if err := s.tickets.SaveEmbedding(ctx, ticket.ID, vector); err != nil {
			s.logger.Warn("failed to persist ticket embedding",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			degraded = true
		}
		suggestions, err = s.searcher.CascadeWithVector(ctx, combined, vector, ticket.AssignedTier, 0)
		if err != nil {
			s.logger.Warn("suggested solutions lookup failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			suggestions = nil
			degraded = true
		}
	}

	if s.metrics != nil {
		s.metrics.RecordTriage(string(ticket.UrgencyLevel), degraded)
	}
	s.publishTriaged(ctx, ticket, degraded)

	s.logger.Info("ticket triaged",
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_key", ticket.ExternalKey),
		zap.Int("urgency_score", ticket.UrgencyScore),
		zap.String("urgency_level", string(ticket.UrgencyLevel)),
		zap.String("assigned_tier", string(ticket.AssignedTier)),
		zap.Bool("degraded", degraded))

	return TriageOutcome{
		Ticket:      ticket,
		Urgency:     result,
		Sentiment:   sentiment,
		Suggestions: suggestions,
		Degraded:    degraded,
	}, nil
}

// Analyze runs the scoring pipeline without persisting anything.
func (s *TriageService) Analyze(ctx context.Context, title, description, category string) (urgency.Result, provider.Sentiment, error) {
	combined := strings.TrimSpace(title + " " + description)
	if combined == "" {
		return urgency.Result{}, provider.Sentiment{}, apperrors.NewValidationError("title or description is required", nil)
	}

	sentiment, err := s.sentiment.Classify(ctx, combined)
	if err != nil {
		s.logger.Warn("sentiment classification failed, using neutral fallback", zap.Error(err))
		sentiment = provider.Sentiment{Label: provider.SentimentNeutral, Score: 0, Confidence: 0}
	}
	return s.engine.Evaluate(sentiment.Label, sentiment.Score, combined, category), sentiment, nil
}

// GetTicket returns a ticket by internal id or external key.
func (s *TriageService) GetTicket(ctx context.Context, id string) (domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, apperrors.MapError(err)
	}
	return *ticket, nil
}

// ListTickets returns tickets matching the filter.
func (s *TriageService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TriageService) publishTriaged(ctx context.Context, ticket domain.Ticket, degraded bool) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, events.NewEvent(events.EventTicketTriaged, events.TicketTriagedPayload{
		TicketID:     ticket.ID,
		TicketKey:    ticket.ExternalKey,
		Title:        ticket.Title,
		UrgencyScore: ticket.UrgencyScore,
		UrgencyLevel: ticket.UrgencyLevel,
		AssignedTier: ticket.AssignedTier,
		Category:     ticket.Category,
		Degraded:     degraded,
	}))
}

func validateTicketInput(input CreateTicketInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperrors.NewValidationError("title is required", nil)
	}
	if strings.TrimSpace(input.Description) == "" {
		return apperrors.NewValidationError("description is required", nil)
	}
	return nil
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(uuid.NewString()[:8])
}
