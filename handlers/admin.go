// handlers/admin.go
package handlers

import (
	"log"

	"click-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(admin fiber.Router, accounts *services.GormAccountStore, counter services.CounterStore, policy services.ReferralPolicy, reconciler reconcileReporter) {
	admin.Post("/referrals", func(c *fiber.Ctx) error {
		var req struct {
			ReferrerID string `json:"referrer_id"`
			ReferredID string `json:"referred_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		ref, err := accounts.RecordReferral(c.UserContext(), req.ReferrerID, req.ReferredID, policy)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ref)
	})

	admin.Post("/counter/reset", func(c *fiber.Ctx) error {
		var req struct {
			Value *int64 `json:"value"`
		}
		if err := c.BodyParser(&req); err != nil || req.Value == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "value is required"})
		}
		if err := counter.Reset(c.UserContext(), *req.Value); err != nil {
			return writeError(c, err)
		}
		log.Printf("🛠️ [ADMIN] %s reset global counter to %d", currentUser(c), *req.Value)
		return c.JSON(fiber.Map{"global_counter": *req.Value})
	})

	admin.Put("/accounts/:id/quota", func(c *fiber.Ctx) error {
		var req struct {
			DailyQuota *int64 `json:"daily_quota"`
		}
		if err := c.BodyParser(&req); err != nil || req.DailyQuota == nil || *req.DailyQuota < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "daily_quota must be a non-negative integer"})
		}
		userID := c.Params("id")
		if err := accounts.SetDailyQuota(c.UserContext(), userID, *req.DailyQuota); err != nil {
			return writeError(c, err)
		}
		log.Printf("🛠️ [ADMIN] %s set daily quota of %s to %d", currentUser(c), userID, *req.DailyQuota)
		return c.JSON(fiber.Map{"id": userID, "daily_quota": *req.DailyQuota})
	})

	if reconciler != nil {
		admin.Get("/reconcile", func(c *fiber.Ctx) error {
			if report, ok := reconciler.Last(); ok {
				return c.JSON(report)
			}
			report, err := reconciler.Check(c.UserContext())
			if err != nil {
				return writeError(c, err)
			}
			return c.JSON(report)
		})
	}
}
