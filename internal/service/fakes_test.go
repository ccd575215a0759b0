package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/events"
	"github.com/spec-kit/supportiq/internal/provider"
	"github.com/spec-kit/supportiq/internal/repository"
	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

type fakeTicketRepo struct {
	mu         sync.Mutex
	tickets    map[string]domain.Ticket
	embeddings map[string][]float32
	createErr  error
	embedErr   error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:    make(map[string]domain.Ticket),
		embeddings: make(map[string][]float32),
	}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return apperrors.NewNotFound("ticket", nil)
	}
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	copied := ticket
	return &copied, nil
}

func (f *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Ticket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		if filter.Tier != nil && ticket.AssignedTier != *filter.Tier {
			continue
		}
		out = append(out, ticket)
	}
	return out, nil
}

func (f *fakeTicketRepo) SaveEmbedding(_ context.Context, ticketID string, embedding []float32) error {
	if f.embedErr != nil {
		return f.embedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeddings[ticketID] = embedding
	return nil
}

func (f *fakeTicketRepo) GetEmbedding(_ context.Context, ticketID string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	embedding, ok := f.embeddings[ticketID]
	if !ok {
		return nil, apperrors.NewNotFound("ticket embedding", nil)
	}
	return embedding, nil
}

type fakeKnowledgeRepo struct {
	mu      sync.Mutex
	entries map[string]domain.KnowledgeEntry
	// statsConflicts fails this many UpdateStats calls with a version
	// conflict before letting one through.
	statsConflicts int
}

func newFakeKnowledgeRepo(entries ...domain.KnowledgeEntry) *fakeKnowledgeRepo {
	repo := &fakeKnowledgeRepo{entries: make(map[string]domain.KnowledgeEntry)}
	for _, entry := range entries {
		repo.entries[entry.ID] = entry
	}
	return repo
}

func (f *fakeKnowledgeRepo) Create(_ context.Context, entry *domain.KnowledgeEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entry.ID] = *entry
	return nil
}

func (f *fakeKnowledgeRepo) GetByID(_ context.Context, id string) (*domain.KnowledgeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return nil, apperrors.NewNotFound("knowledge entry", nil)
	}
	copied := entry
	return &copied, nil
}

func (f *fakeKnowledgeRepo) List(_ context.Context, filter repository.KnowledgeFilter) ([]domain.KnowledgeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.KnowledgeEntry, 0, len(f.entries))
	for _, entry := range f.entries {
		if filter.Tier != nil && entry.Tier != *filter.Tier {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (f *fakeKnowledgeRepo) ListActive(_ context.Context, tiers []domain.Tier) ([]domain.KnowledgeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.KnowledgeEntry, 0, len(f.entries))
	for _, entry := range f.entries {
		if !entry.Active {
			continue
		}
		if len(tiers) > 0 {
			match := false
			for _, tier := range tiers {
				if entry.Tier == tier {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (f *fakeKnowledgeRepo) IncrementUsage(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return apperrors.NewNotFound("knowledge entry", nil)
	}
	entry.UsageCount++
	entry.Version++
	f.entries[id] = entry
	return nil
}

func (f *fakeKnowledgeRepo) UpdateStats(_ context.Context, id string, version int64, stats repository.EntryStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return apperrors.NewNotFound("knowledge entry", nil)
	}
	if f.statsConflicts > 0 {
		f.statsConflicts--
		return repository.ErrVersionConflict
	}
	if entry.Version != version {
		return repository.ErrVersionConflict
	}
	entry.FeedbackCount = stats.FeedbackCount
	entry.AvgFeedbackScore = stats.AvgFeedbackScore
	entry.SuccessRate = stats.SuccessRate
	entry.Version++
	f.entries[id] = entry
	return nil
}

func (f *fakeKnowledgeRepo) Categories(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, entry := range f.entries {
		if _, ok := seen[entry.Category]; ok {
			continue
		}
		seen[entry.Category] = struct{}{}
		out = append(out, entry.Category)
	}
	return out, nil
}

type fakePromotionRepo struct {
	mu      sync.Mutex
	entries *fakeKnowledgeRepo
	records []domain.PromotionRecord
	// failFor injects a transient error for one entry id.
	failFor map[string]error
	// conflictOnce fails the first Promote per listed entry with a
	// version conflict.
	conflictOnce map[string]bool
}

func newFakePromotionRepo(entries *fakeKnowledgeRepo) *fakePromotionRepo {
	return &fakePromotionRepo{
		entries:      entries,
		failFor:      make(map[string]error),
		conflictOnce: make(map[string]bool),
	}
}

func (f *fakePromotionRepo) Promote(_ context.Context, entryID string, version int64, record *domain.PromotionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[entryID]; ok {
		return err
	}
	if f.conflictOnce[entryID] {
		f.conflictOnce[entryID] = false
		return repository.ErrVersionConflict
	}

	f.entries.mu.Lock()
	defer f.entries.mu.Unlock()
	entry, ok := f.entries.entries[entryID]
	if !ok {
		return apperrors.NewNotFound("knowledge entry", nil)
	}
	if entry.Version != version || entry.Tier != record.FromTier {
		return repository.ErrVersionConflict
	}
	entry.Tier = record.ToTier
	entry.Version++
	f.entries.entries[entryID] = entry
	// insert mints the id and timestamp, matching the SQL RETURNING clause
	record.ID = uuid.NewString()
	record.PromotedAt = time.Now().UTC()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakePromotionRepo) ListRecords(_ context.Context, entryID string, limit int) ([]domain.PromotionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.PromotionRecord, 0, len(f.records))
	for _, record := range f.records {
		if entryID != "" && record.KnowledgeEntryID != entryID {
			continue
		}
		out = append(out, record)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeResolutionRepo struct {
	mu          sync.Mutex
	resolutions map[string]domain.Resolution
}

func newFakeResolutionRepo() *fakeResolutionRepo {
	return &fakeResolutionRepo{resolutions: make(map[string]domain.Resolution)}
}

func (f *fakeResolutionRepo) Create(_ context.Context, resolution *domain.Resolution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolutions[resolution.ID] = *resolution
	return nil
}

func (f *fakeResolutionRepo) GetByID(_ context.Context, id string) (*domain.Resolution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resolution, ok := f.resolutions[id]
	if !ok {
		return nil, apperrors.NewNotFound("resolution", nil)
	}
	copied := resolution
	return &copied, nil
}

func (f *fakeResolutionRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Resolution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Resolution, 0)
	for _, resolution := range f.resolutions {
		if resolution.TicketID == ticketID {
			out = append(out, resolution)
		}
	}
	return out, nil
}

func (f *fakeResolutionRepo) AttachFeedback(_ context.Context, id string, score int, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	resolution, ok := f.resolutions[id]
	if !ok {
		return apperrors.NewNotFound("resolution", nil)
	}
	if resolution.FeedbackScore != nil {
		return apperrors.NewConflict("feedback already recorded", nil)
	}
	resolution.FeedbackScore = &score
	resolution.FeedbackComment = comment
	f.resolutions[id] = resolution
	return nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) Dimension() int {
	return len(f.vector)
}

type fakeSentiment struct {
	result provider.Sentiment
	err    error
}

func (f *fakeSentiment) Classify(_ context.Context, _ string) (provider.Sentiment, error) {
	if f.err != nil {
		return provider.Sentiment{}, f.err
	}
	return f.result, nil
}

type capturedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturedEvents) Publish(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturedEvents) Subscribe(events.EventType, events.EventHandler) {}

func (c *capturedEvents) byType(eventType events.EventType) []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Event, 0)
	for _, event := range c.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

var errBoom = errors.New("boom")
