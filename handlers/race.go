package handlers

import (
	"race-wager-system/middleware"
	"race-wager-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRaceRoutes(app *fiber.App, raceService *services.RaceService, profileService *services.ProfileService) {
	// 🔓 Public reads — anyone holding a referral code can inspect a race
	app.Get("/races/:code", raceService.GetRace)
	app.Get("/races/:code/entries", raceService.ListEntries)
	app.Get("/races/:code/entries/:player", raceService.GetPlayerEntry)

	// Execute is deliberately public: any party may trigger a due transition
	app.Post("/races/:code/execute", raceService.ExecuteRace)

	// 🔐 Player operations
	secured := app.Group("/", middleware.PlayerContextMiddleware())
	secured.Post("/races", raceService.CreateRace)
	secured.Post("/races/:code/join", raceService.JoinRace)
	secured.Post("/races/:code/claim", raceService.ClaimPrize)
	secured.Post("/races/:code/stats", profileService.UpdateStats)
}
