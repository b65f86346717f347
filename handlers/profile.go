package handlers

import (
	"race-wager-system/middleware"
	"race-wager-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, profileService *services.ProfileService) {
	// 🔓 Public reads
	app.Get("/profiles", profileService.ListProfiles) // leaderboard
	app.Get("/profiles/:player", profileService.GetProfile)

	// 🔐 Player operations
	secured := app.Group("/", middleware.PlayerContextMiddleware())
	secured.Post("/profiles", profileService.CreateProfile)
}
