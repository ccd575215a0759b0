package service

import (
	"context"
	"strings"
	"testing"

	"github.com/spec-kit/supportiq/internal/config"
	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/events"
	"github.com/spec-kit/supportiq/internal/provider"
	"github.com/spec-kit/supportiq/internal/search"
	"github.com/spec-kit/supportiq/internal/urgency"
	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

func testUrgencyEngine() *urgency.Engine {
	return urgency.NewEngine(config.UrgencyConfig{
		CriticalKeywords:    []string{"payment", "outage", "down", "emergency"},
		HighUrgencyKeywords: []string{"error", "failed", "broken"},
		CategoryBaselines: map[string]float64{
			"payment": 8,
			"general": 3,
		},
	})
}

type triageFixture struct {
	svc       *TriageService
	tickets   *fakeTicketRepo
	knowledge *fakeKnowledgeRepo
	embedder  *fakeEmbedder
	sentiment *fakeSentiment
	captured  *capturedEvents
}

func newTriageFixture(t *testing.T, entries ...domain.KnowledgeEntry) *triageFixture {
	t.Helper()
	tickets := newFakeTicketRepo()
	knowledge := newFakeKnowledgeRepo(entries...)
	embedder := &fakeEmbedder{vector: []float32{1, 0, 0}}
	sentiment := &fakeSentiment{result: provider.Sentiment{Label: provider.SentimentNeutral, Score: 0, Confidence: 0.9}}
	captured := &capturedEvents{}

	ranker, err := search.NewRanker(0.7, 0.3, 5)
	if err != nil {
		t.Fatalf("NewRanker: %v", err)
	}
	searcher := NewSearchService(SearchDependencies{
		KnowledgeRepo: knowledge,
		Embedder:      embedder,
		Ranker:        ranker,
	})
	svc := NewTriageService(TriageDependencies{
		TicketRepo: tickets,
		Engine:     testUrgencyEngine(),
		Sentiment:  sentiment,
		Embedder:   embedder,
		Searcher:   searcher,
		Events:     captured,
	})
	return &triageFixture{svc: svc, tickets: tickets, knowledge: knowledge, embedder: embedder, sentiment: sentiment, captured: captured}
}

func TestCreateTicketCriticalFlow(t *testing.T) {
	fx := newTriageFixture(t,
		domain.KnowledgeEntry{ID: "kb-l3", Tier: domain.TierL3, Active: true, Embedding: []float32{1, 0, 0}, Keywords: []string{"payment"}},
	)
	fx.sentiment.result = provider.Sentiment{Label: provider.SentimentVeryNegative, Score: -1, Confidence: 0.95}

	outcome, err := fx.svc.CreateTicket(context.Background(), CreateTicketInput{
		Title:       "Payment system down",
		Description: "every checkout fails, this is an emergency",
		Category:    "payment",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if outcome.Ticket.UrgencyLevel != domain.UrgencyCritical {
		t.Errorf("urgency level = %s, want critical", outcome.Ticket.UrgencyLevel)
	}
	if outcome.Ticket.AssignedTier != domain.TierL3 {
		t.Errorf("assigned tier = %s, want L3", outcome.Ticket.AssignedTier)
	}
	if outcome.Ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %s, want open", outcome.Ticket.Status)
	}
	if !strings.HasPrefix(outcome.Ticket.ExternalKey, "TCK-") {
		t.Errorf("external key = %q", outcome.Ticket.ExternalKey)
	}
	if outcome.Degraded {
		t.Error("flow should not be degraded")
	}
	if len(outcome.Suggestions) != 1 || outcome.Suggestions[0].Entry.ID != "kb-l3" {
		t.Errorf("suggestions = %+v, want kb-l3", outcome.Suggestions)
	}

	stored, err := fx.tickets.GetByID(context.Background(), outcome.Ticket.ID)
	if err != nil {
		t.Fatalf("ticket not persisted: %v", err)
	}
	if stored.UrgencyScore != outcome.Ticket.UrgencyScore {
		t.Error("persisted ticket differs from outcome")
	}
	if _, err := fx.tickets.GetEmbedding(context.Background(), outcome.Ticket.ID); err != nil {
		t.Errorf("embedding not persisted: %v", err)
	}

	triaged := fx.captured.byType(events.EventTicketTriaged)
	if len(triaged) != 1 {
		t.Fatalf("triaged events = %d, want 1", len(triaged))
	}
	payload := triaged[0].Payload.(events.TicketTriagedPayload)
	if payload.UrgencyLevel != domain.UrgencyCritical || payload.Degraded {
		t.Errorf("event payload = %+v", payload)
	}
}

func TestCreateTicketSentimentFallback(t *testing.T) {
	fx := newTriageFixture(t)
	fx.sentiment.err = errBoom

	outcome, err := fx.svc.CreateTicket(context.Background(), CreateTicketInput{
		Title:       "Question",
		Description: "how do I export a report",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if !outcome.Degraded {
		t.Error("expected degraded outcome")
	}
	if outcome.Sentiment.Label != provider.SentimentNeutral {
		t.Errorf("fallback label = %q, want neutral", outcome.Sentiment.Label)
	}
	if outcome.Ticket.UrgencyScore < 1 || outcome.Ticket.UrgencyScore > 10 {
		t.Errorf("score out of range: %d", outcome.Ticket.UrgencyScore)
	}
}

func TestCreateTicketEmbeddingFailureDegrades(t *testing.T) {
	fx := newTriageFixture(t,
		domain.KnowledgeEntry{ID: "kb", Tier: domain.TierL1, Active: true, Embedding: []float32{1, 0, 0}},
	)
	fx.embedder.err = errBoom

	outcome, err := fx.svc.CreateTicket(context.Background(), CreateTicketInput{
		Title:       "Printer broken",
		Description: "paper jam light stays on",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if !outcome.Degraded {
		t.Error("expected degraded outcome")
	}
	if len(outcome.Suggestions) != 0 {
		t.Errorf("suggestions = %d, want none", len(outcome.Suggestions))
	}
	// the ticket itself still lands
	if _, err := fx.tickets.GetByID(context.Background(), outcome.Ticket.ID); err != nil {
		t.Fatalf("ticket not persisted: %v", err)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	fx := newTriageFixture(t)

	tests := []struct {
		name  string
		input CreateTicketInput
	}{
		{"missing title", CreateTicketInput{Description: "text"}},
		{"missing description", CreateTicketInput{Title: "text"}},
		{"blank title", CreateTicketInput{Title: "   ", Description: "text"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.CreateTicket(context.Background(), tt.input)
			if !apperrors.IsCode(err, "VALIDATION_FAILED") {
				t.Fatalf("expected VALIDATION_FAILED, got %v", err)
			}
		})
	}
}

func TestAnalyzeDoesNotPersist(t *testing.T) {
	fx := newTriageFixture(t)
	fx.sentiment.result = provider.Sentiment{Label: provider.SentimentNegative, Score: -0.5, Confidence: 0.8}

	result, sentiment, err := fx.svc.Analyze(context.Background(), "Payment declined", "card charge failed twice", "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Score < 1 || result.Score > 10 {
		t.Errorf("score out of range: %d", result.Score)
	}
	if result.EffectiveCategory != "payment" {
		t.Errorf("effective category = %q, want payment (auto-detected)", result.EffectiveCategory)
	}
	if sentiment.Label != provider.SentimentNegative {
		t.Errorf("label = %q", sentiment.Label)
	}
	if len(fx.tickets.tickets) != 0 {
		t.Error("Analyze must not persist tickets")
	}

	if _, _, err := fx.svc.Analyze(context.Background(), "", "", ""); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("empty analyze: expected VALIDATION_FAILED, got %v", err)
	}
}
