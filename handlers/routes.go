// handlers/routes.go
package handlers

import (
	"context"
	"errors"
	"log"

	"click-reward-system/middleware"
	"click-reward-system/services"
	"click-reward-system/workers"

	"github.com/gofiber/fiber/v2"
)

type reconcileReporter interface {
	Last() (workers.ReconcileReport, bool)
	Check(ctx context.Context) (workers.ReconcileReport, error)
}

// Deps carries everything the HTTP surface needs. Stream, Validator and
// Reconciler are optional; their routes are skipped when nil.
type Deps struct {
	Clicks     *services.ClickService
	Activities *services.ActivityService
	Accounts   *services.GormAccountStore
	Counter    services.CounterStore
	Referrals  services.ReferralPolicy
	Stream     *services.RewardStreamService
	Validator  middleware.TokenValidator
	Reconciler reconcileReporter
}

// SetupRoutes mounts public routes at the root and user routes under /s,
// with /s/admin restricted to the admin role.
func SetupRoutes(app *fiber.App, d Deps) {
	secured := app.Group("/s", middleware.UserContextMiddleware())
	admin := secured.Group("/admin", middleware.RequireRole("admin"))

	SetupClickRoutes(app, secured, d.Clicks, d.Accounts)
	SetupActivityRoutes(app, secured, d.Activities)
	SetupRewardRoutes(app, secured, d.Accounts, d.Stream, d.Validator)
	SetupAdminRoutes(admin, d.Accounts, d.Counter, d.Referrals, d.Reconciler)
}

// writeError maps service errors onto HTTP statuses.
func writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, services.ErrAccountNotFound):
		status, msg = fiber.StatusNotFound, "account not found"
	case errors.Is(err, services.ErrActivityNotFound):
		status, msg = fiber.StatusNotFound, "activity not found"
	case errors.Is(err, services.ErrInvalidCounter), errors.Is(err, services.ErrInvalidReferral):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrReferralExists):
		status, msg = fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrStoreUnavailable):
		status, msg = fiber.StatusServiceUnavailable, "store unavailable, retry later"
	case errors.Is(err, services.ErrConfiguration):
		msg = "reward configuration error"
	}
	if status >= fiber.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func currentUser(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}
