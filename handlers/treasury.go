package handlers

import (
	"race-wager-system/middleware"
	"race-wager-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTreasuryRoutes(app *fiber.App, treasuryService *services.TreasuryService, walletService *services.WalletService) {
	// 🔓 Public reads
	app.Get("/treasury", treasuryService.GetTreasury)
	app.Get("/wallets/:player", walletService.GetWallet)

	// 🔐 Operator-only: service token + caller address (authority checks
	// run against the stored treasury record inside the service)
	admin := app.Group("/", middleware.ServiceAuthMiddleware(), middleware.PlayerContextMiddleware())
	admin.Post("/treasury/initialize", treasuryService.Initialize)
	admin.Patch("/treasury/fee", treasuryService.UpdateFee)
	admin.Post("/treasury/transfer-authority", treasuryService.TransferAuthority)
	admin.Post("/treasury/withdraw", treasuryService.Withdraw)
	admin.Post("/wallets/deposit", walletService.Deposit)
}
