package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/supportiq/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Tickets    *handlers.TicketsHandler
	Search     *handlers.SearchHandler
	Knowledge  *handlers.KnowledgeHandler
	Promotions *handlers.PromotionsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Post("/analyze", cfg.Tickets.Analyze)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/resolve", cfg.Tickets.ResolveTicket)
	tickets.Get("/:id/resolutions", cfg.Tickets.ListResolutions)

	app.Post("/resolutions/:id/feedback", cfg.Tickets.RecordFeedback)

	app.Post("/search", cfg.Search.Search)

	knowledge := app.Group("/knowledge")
	knowledge.Post("", cfg.Knowledge.CreateEntry)
	knowledge.Get("", cfg.Knowledge.ListEntries)
	knowledge.Get("/categories", cfg.Knowledge.Categories)
	knowledge.Get("/:id", cfg.Knowledge.GetEntry)
	knowledge.Post("/:id/promote", cfg.Promotions.PromoteEntry)

	promotions := app.Group("/promotions")
	promotions.Post("/sweep", cfg.Promotions.Sweep)
	promotions.Get("/candidates", cfg.Promotions.Candidates)
	promotions.Get("/history", cfg.Promotions.History)
}
