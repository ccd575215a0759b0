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

// KnowledgeHandler manages knowledge base endpoints.
type KnowledgeHandler struct {
	knowledge *service.KnowledgeService
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(knowledgeService *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledgeService}
}

// CreateEntry POST /knowledge.
func (h *KnowledgeHandler) CreateEntry(c *fiber.Ctx) error {
	var req dto.CreateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	entry, err := h.knowledge.CreateEntry(c.UserContext(), service.CreateEntryInput{
		Tier:     req.Tier,
		Title:    req.Title,
		Content:  req.Content,
		Keywords: req.Keywords,
		Category: req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": entryResponse(entry)})
}

// GetEntry GET /knowledge/:id.
func (h *KnowledgeHandler) GetEntry(c *fiber.Ctx) error {
	entry, err := h.knowledge.GetEntry(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entryResponse(entry)})
}

// ListEntries GET /knowledge.
func (h *KnowledgeHandler) ListEntries(c *fiber.Ctx) error {
	entries, err := h.knowledge.ListEntries(c.UserContext(), parseKnowledgeQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.KnowledgeEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, entryResponse(entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Categories GET /knowledge/categories.
func (h *KnowledgeHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.knowledge.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categories})
}

func parseKnowledgeQuery(c *fiber.Ctx) repository.KnowledgeFilter {
	filter := repository.KnowledgeFilter{Limit: 50}

	if raw := strings.TrimSpace(c.Query("tier")); raw != "" {
		tier := domain.Tier(raw)
		filter.Tier = &tier
	}
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		filter.Category = &raw
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active := raw == "true" || raw == "1"
		filter.Active = &active
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	return filter
}
