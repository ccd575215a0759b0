package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/supportiq/internal/api/dto"
	"github.com/spec-kit/supportiq/internal/search"
	"github.com/spec-kit/supportiq/internal/service"
	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

// SearchHandler exposes hybrid knowledge base search.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler constructs handler.
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{search: searchService}
}

// Search POST /search.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Query) == "" {
		return apperrors.NewValidationError("query is required", nil)
	}
	if req.Tier != nil && !req.Tier.Valid() {
		return apperrors.NewValidationError("tier must be one of L1, L2, L3", nil)
	}

	var (
		results []search.Ranked
		err     error
	)
	if req.Cascade && req.Tier != nil {
		results, err = h.search.CascadeSearch(c.UserContext(), req.Query, *req.Tier, req.TopK)
	} else {
		results, err = h.search.Search(c.UserContext(), req.Query, req.Tier, req.TopK)
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.SearchResponse{
		Query:   req.Query,
		Results: searchResultItems(results),
	}})
}
