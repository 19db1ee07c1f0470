package handlers

import (
	"click-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupActivityRoutes(app *fiber.App, secured fiber.Router, activities *services.ActivityService) {
	app.Get("/activities", func(c *fiber.Ctx) error {
		defs, err := activities.List(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"activities": defs})
	})

	secured.Get("/activities/:id/status", func(c *fiber.Ctx) error {
		status, err := activities.Status(c.UserContext(), currentUser(c), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(status)
	})

	secured.Post("/activities/:id/click", func(c *fiber.Ctx) error {
		res, err := activities.Click(c.UserContext(), currentUser(c), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		status := fiber.StatusOK
		switch res.Status {
		case services.ActivityNotFound:
			status = fiber.StatusNotFound
		case services.ActivityAlreadyCompleted:
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(res)
	})
}
