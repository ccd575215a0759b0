package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/supportiq/internal/api/dto"
	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/repository"
	"github.com/spec-kit/supportiq/internal/service"
	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

// TicketsHandler manages ticket intake and resolution endpoints.
type TicketsHandler struct {
	triage      *service.TriageService
	resolutions *service.ResolutionService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(triage *service.TriageService, resolutions *service.ResolutionService) *TicketsHandler {
	return &TicketsHandler{triage: triage, resolutions: resolutions}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	outcome, err := h.triage.CreateTicket(c.UserContext(), service.CreateTicketInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		RequesterEmail: req.RequesterEmail,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": triageResponse(outcome)})
}

// Analyze POST /tickets/analyze. Scores without persisting.
func (h *TicketsHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, sentiment, err := h.triage.Analyze(c.UserContext(), req.Title, req.Description, req.Category)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"urgency":   urgencyBreakdown(result),
		"sentiment": sentimentResponse(sentiment),
	}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.triage.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.triage.ListTickets(c.UserContext(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ResolveTicket POST /tickets/:id/resolve.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	resolution, err := h.resolutions.ResolveTicket(c.UserContext(), service.ResolveTicketInput{
		TicketID:         c.Params("id"),
		KnowledgeEntryID: req.KnowledgeEntryID,
		Solution:         req.Solution,
		ResolvedBy:       req.ResolvedBy,
		FeedbackScore:    req.FeedbackScore,
		FeedbackComment:  req.FeedbackComment,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resolutionResponse(resolution)})
}

// ListResolutions GET /tickets/:id/resolutions.
func (h *TicketsHandler) ListResolutions(c *fiber.Ctx) error {
	resolutions, err := h.resolutions.ListByTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ResolutionResponse, 0, len(resolutions))
	for i := range resolutions {
		items = append(items, resolutionResponse(resolutions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// RecordFeedback POST /resolutions/:id/feedback.
func (h *TicketsHandler) RecordFeedback(c *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.resolutions.RecordFeedback(c.UserContext(), c.Params("id"), req.Score, req.Comment); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"recorded": true}})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{Limit: 50}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.TicketStatus(strings.TrimSpace(part))
			if status != "" {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	if raw := strings.TrimSpace(c.Query("tier")); raw != "" {
		tier := domain.Tier(raw)
		filter.Tier = &tier
	}
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		filter.Category = &raw
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	return filter
}
