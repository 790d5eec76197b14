package handlers

import (
	"fan-claim-service/middleware"
	"fan-claim-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTokenRoutes(app *fiber.App, tokenService *services.TokenService) {
	// 🔓 Public read-only routes
	app.Get("/collections", tokenService.ListCollectionsEndpoint)
	app.Get("/collections/:id", tokenService.GetCollectionEndpoint)
	app.Get("/tokens/:token_id", tokenService.GetTokenEndpoint)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Minting (KYC-gated in the service)
	secured.Post("/collections/:id/mint", tokenService.MintEndpoint)

	// 🔒 Platform manager routes
	admin := secured.Group("/admin", middleware.RequireRole(middleware.PlatformManagerRole))
	admin.Post("/collections", tokenService.CreateCollectionEndpoint)
	admin.Patch("/collections/:id", tokenService.UpdateCollectionEndpoint)
}
