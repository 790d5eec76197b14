package handlers

import (
	"fan-claim-service/middleware"
	"fan-claim-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDistributionRoutes(app *fiber.App, distributionService *services.DistributionService) {
	// 🔓 Public read-only routes
	app.Get("/distribution-events/:id", distributionService.GetEventEndpoint)
	app.Get("/distribution-events/:id/receipts", distributionService.ListReceiptsEndpoint)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Claiming (token owners)
	secured.Post("/claims", distributionService.ClaimEndpoint)
	secured.Post("/claims/batch", distributionService.BatchClaimEndpoint)

	// Funding (service checks the caller is the event's athlete)
	secured.Post("/distribution-events/:id/pay-in", distributionService.PayInEndpoint)

	// 🔒 Platform manager routes
	admin := secured.Group("/admin", middleware.RequireRole(middleware.PlatformManagerRole))
	admin.Post("/distribution-events", distributionService.CreateEventEndpoint)
	admin.Get("/distribution-events", distributionService.ListEventsEndpoint)
	admin.Patch("/distribution-events/:id", distributionService.UpdateEventEndpoint)
	admin.Post("/distribution-events/:id/snapshot", distributionService.TakeSnapshotEndpoint)
	admin.Post("/distribution-events/:id/close", distributionService.CloseEndpoint)
}
