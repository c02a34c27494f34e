// handlers/admin_routes.go
package handlers

import (
	"strconv"

	"earn-bot-system/config"
	"earn-bot-system/middleware"
	"earn-bot-system/models"
	"earn-bot-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// SetupAdminRoutes wires the operator surface: reporting is read-only over
// the ledger and account store; the only writes are withdrawal resolution,
// balance adjustments and block toggles, all of which go through the core.
func SetupAdminRoutes(
	app *fiber.App,
	cfg *config.Config,
	accounts *services.AccountService,
	ledger *services.LedgerService,
	withdrawals *services.WithdrawalService,
	stats *services.StatsService,
) {
	admin := app.Group("/admin", middleware.UserContextMiddleware(), middleware.AdminGuard(cfg.AdminIDs))

	admin.Get("/stats", func(c *fiber.Ctx) error {
		global, err := stats.Global()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(global)
	})

	admin.Get("/withdrawals/pending", func(c *fiber.Ctx) error {
		pending, err := withdrawals.Pending()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(pending)
	})

	admin.Post("/withdrawals/:id/resolve", func(c *fiber.Ctx) error {
		operatorID, _ := userCtx(c)
		var req struct {
			Outcome string `json:"outcome"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.Outcome != string(models.WithdrawalApproved) && req.Outcome != string(models.WithdrawalRejected) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "outcome must be approved or rejected"})
		}
		request, err := withdrawals.Resolve(c.Params("id"), operatorID, req.Outcome == string(models.WithdrawalApproved))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(request)
	})

	admin.Get("/users/:id", func(c *fiber.Ctx) error {
		userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
		}
		account, err := accounts.Get(userID)
		if err != nil {
			return respondError(c, err)
		}
		userStats, err := stats.ForUser(account)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(userStats)
	})

	admin.Post("/users/:id/block", setBlocked(accounts, true))
	admin.Post("/users/:id/unblock", setBlocked(accounts, false))

	admin.Post("/users/:id/adjust", func(c *fiber.Ctx) error {
		userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
		}
		var req struct {
			Amount decimal.Decimal `json:"amount"` // signed: negative debits
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		entry, err := ledger.Append(userID, models.EntryAdminAdjustment, req.Amount, nil)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})
}

func setBlocked(accounts *services.AccountService, blocked bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
		}
		if err := accounts.SetBlocked(userID, blocked); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"user_id": userID, "blocked": blocked})
	}
}
