package handlers

import (
	"club-gameplay-engine/middleware"
	"club-gameplay-engine/models"
	"club-gameplay-engine/services"

	"github.com/gofiber/fiber/v2"
)

type goalAttemptRequest struct {
	MatchID    string `json:"match_id"`
	ActionType string `json:"action_type"`
}

// SetupGameplayRoutes wires the session and scoring endpoints. Everything
// here needs player context, so the whole group sits under /s.
func SetupGameplayRoutes(app *fiber.App, presence *services.PresenceService, scoring *services.GoalScoringService) {
	secured := app.Group("/s", middleware.PlayerContextMiddleware())

	secured.Post("/gameplay/connect", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		if err := presence.Start(c.Context(), playerID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to start gameplay session",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "connected"})
	})

	secured.Post("/gameplay/heartbeat", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		if err := presence.Heartbeat(c.Context(), playerID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to refresh presence",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "online"})
	})

	secured.Post("/gameplay/logout", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		if err := presence.Clear(c.Context(), playerID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to clear gameplay session",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "disconnected"})
	})

	secured.Post("/gameplay/attempt", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		var req goalAttemptRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.MatchID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "match_id is required"})
		}

		actionType := models.GoalActionType(req.ActionType)
		if !actionType.Valid() || !actionType.Manual() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action_type must be one of: penalty, free_kick, trail"})
		}

		result, err := scoring.AttemptGoal(c.Context(), playerID, req.MatchID, actionType)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to resolve goal attempt",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})
}
