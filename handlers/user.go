package handlers

import (
	"fan-claim-service/middleware"
	"fan-claim-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService, ledgerService *services.LedgerService) {
	// 🔓 Public read-only routes
	app.Get("/users/:address/compliance", userService.CheckAddress)
	app.Get("/ledger/:address/balance", ledgerService.GetBalance)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/ledger/approve", ledgerService.ApproveSpender)

	// 🔒 Platform manager routes
	admin := secured.Group("/admin", middleware.RequireRole(middleware.PlatformManagerRole))
	admin.Post("/users/kyc", userService.AddToKYC)
	admin.Delete("/users/kyc", userService.RemoveFromKYC)
	admin.Post("/users/ident", userService.AddToIdent)
	admin.Delete("/users/ident", userService.RemoveFromIdent)
	admin.Post("/allowlist/batch", userService.BatchAllowlistEndpoint)
	admin.Post("/ledger/credit", ledgerService.CreditAccount)
}
