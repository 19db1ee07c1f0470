// handlers/click.go
package handlers

import (
	"click-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupClickRoutes(app *fiber.App, secured fiber.Router, clicks *services.ClickService, accounts *services.GormAccountStore) {
	// 🔓 Public
	app.Get("/global", func(c *fiber.Ctx) error {
		info, err := clicks.GlobalInfo(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(info)
	})

	// 🔐 Secured
	secured.Post("/click", func(c *fiber.Ctx) error {
		res, err := clicks.Click(c.UserContext(), currentUser(c))
		if err != nil {
			return writeError(c, err)
		}
		status := fiber.StatusOK
		switch res.Status {
		case services.ClickQuotaExceeded:
			status = fiber.StatusTooManyRequests
		case services.ClickAccountNotFound:
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(res)
	})

	// first observed login creates the account
	secured.Get("/user/account", func(c *fiber.Ctx) error {
		acct, err := accounts.EnsureAccount(c.UserContext(), currentUser(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(acct)
	})
}
