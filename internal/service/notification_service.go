package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/supportiq/internal/config"
	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/events"
)

// NotificationService forwards noteworthy events to an outbound webhook.
// With no webhook configured it only logs, which keeps local runs quiet.
type NotificationService struct {
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Register subscribes the notification handlers on the dispatcher.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketTriaged, s.handleTicketTriaged)
	dispatcher.Subscribe(events.EventEntryPromoted, s.handleEntryPromoted)
}

// handleTicketTriaged alerts on critical tickets only.
func (s *NotificationService) handleTicketTriaged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketTriagedPayload)
	if !ok || payload.UrgencyLevel != domain.UrgencyCritical {
		return nil
	}

	s.logger.Info("critical ticket alert",
		zap.String("ticket_id", payload.TicketID),
		zap.String("ticket_key", payload.TicketKey),
		zap.Int("urgency_score", payload.UrgencyScore))
	return s.deliver(ctx, map[string]any{
		"kind":          "critical_ticket",
		"ticket_id":     payload.TicketID,
		"ticket_key":    payload.TicketKey,
		"title":         payload.Title,
		"urgency_score": payload.UrgencyScore,
		"assigned_tier": payload.AssignedTier,
		"category":      payload.Category,
	})
}

func (s *NotificationService) handleEntryPromoted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EntryPromotedPayload)
	if !ok {
		return nil
	}
	return s.deliver(ctx, map[string]any{
		"kind":      "entry_promoted",
		"entry_id":  payload.KnowledgeEntryID,
		"from_tier": payload.FromTier,
		"to_tier":   payload.ToTier,
		"reason":    payload.Reason,
		"manual":    payload.Manual,
	})
}

func (s *NotificationService) deliver(ctx context.Context, body map[string]any) error {
	if s.webhookURL == "" {
		return nil
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
