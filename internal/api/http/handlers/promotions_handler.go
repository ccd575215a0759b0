package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/supportiq/internal/api/dto"
	"github.com/spec-kit/supportiq/internal/service"
	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

// PromotionsHandler exposes the tier promotion engine.
type PromotionsHandler struct {
	promotions *service.PromotionService
}

// NewPromotionsHandler constructs handler.
func NewPromotionsHandler(promotionService *service.PromotionService) *PromotionsHandler {
	return &PromotionsHandler{promotions: promotionService}
}

// Sweep POST /promotions/sweep. Triggers a pass outside the schedule.
func (h *PromotionsHandler) Sweep(c *fiber.Ctx) error {
	result, err := h.promotions.Sweep(c.UserContext())
	if err != nil {
		return err
	}

	promoted := make([]dto.PromotionRecordResponse, 0, len(result.Promoted))
	for i := range result.Promoted {
		promoted = append(promoted, promotionRecordResponse(result.Promoted[i]))
	}
	return c.JSON(fiber.Map{"data": dto.SweepResponse{
		Evaluated: result.Evaluated,
		Promoted:  promoted,
		Failed:    result.Failed,
	}})
}

// Candidates GET /promotions/candidates.
func (h *PromotionsHandler) Candidates(c *fiber.Ctx) error {
	candidates, err := h.promotions.Candidates(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PromotionCandidateResponse, 0, len(candidates))
	for i := range candidates {
		items = append(items, promotionCandidateResponse(candidates[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// History GET /promotions/history.
func (h *PromotionsHandler) History(c *fiber.Ctx) error {
	limit := 100
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 {
		limit = parsed
	}

	records, err := h.promotions.History(c.UserContext(), c.Query("entry_id"), limit)
	if err != nil {
		return err
	}
	items := make([]dto.PromotionRecordResponse, 0, len(records))
	for i := range records {
		items = append(items, promotionRecordResponse(records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// PromoteEntry POST /knowledge/:id/promote. Manual single-step promotion.
func (h *PromotionsHandler) PromoteEntry(c *fiber.Ctx) error {
	var req dto.PromoteEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	record, err := h.promotions.PromoteManual(c.UserContext(), c.Params("id"), req.ToTier, req.Reason)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": promotionRecordResponse(record)})
}
