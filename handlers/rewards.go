package handlers

import (
	"click-reward-system/middleware"
	"click-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

const maxRewardPage = 200

func SetupRewardRoutes(app *fiber.App, secured fiber.Router, accounts *services.GormAccountStore, stream *services.RewardStreamService, validator middleware.TokenValidator) {
	secured.Get("/user/rewards", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > maxRewardPage {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be between 1 and 200"})
		}
		records, err := accounts.ListRewards(c.UserContext(), currentUser(c), limit)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"rewards": records})
	})

	secured.Get("/user/rewards/counts", func(c *fiber.Ctx) error {
		counts, err := accounts.CountRewards(c.UserContext(), currentUser(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(counts)
	})

	if stream != nil && validator != nil {
		app.Get("/rewards/stream", middleware.SSEAuthMiddleware(validator), stream.StreamUserRewardsSSE)
	}
}
