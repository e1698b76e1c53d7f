package handlers

import (
	"time"

	"club-gameplay-engine/services"

	"github.com/gofiber/fiber/v2"
)

// SetupLeaderboardRoutes exposes the cached leaderboard snapshots and the
// live online count. Read-only, no player context needed.
func SetupLeaderboardRoutes(app *fiber.App, leaderboards *services.LeaderboardService, presence *services.PresenceService) {
	app.Get("/leaderboards/hour", func(c *fiber.Ctx) error {
		snapshot, err := leaderboards.CachedHourSnapshot(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load hour leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"entries": snapshot})
	})

	app.Get("/leaderboards/season", func(c *fiber.Ctx) error {
		snapshot, err := leaderboards.CachedSeasonSnapshot(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load season leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"entries": snapshot})
	})

	app.Get("/leaderboards/round/:id", func(c *fiber.Ctx) error {
		roundID := c.Params("id")
		if roundID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "round id is required"})
		}

		snapshot, err := leaderboards.CachedRoundSnapshot(c.Context(), roundID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load round leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"round_id": roundID, "entries": snapshot})
	})

	app.Get("/presence/online", func(c *fiber.Ctx) error {
		count, err := presence.OnlineCount(c.Context(), time.Now())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to count online players",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"online": count})
	})
}
