// handlers/economy_routes.go
package handlers

import (
	"errors"

	"earn-bot-system/middleware"
	"earn-bot-system/models"
	"earn-bot-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// respondError maps core sentinel errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrBelowMinimum),
		errors.Is(err, services.ErrInvalidDetails),
		errors.Is(err, services.ErrUnknownPlan):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrInsufficientFunds):
		status = fiber.StatusPaymentRequired
	case errors.Is(err, services.ErrUnknownAccount),
		errors.Is(err, services.ErrUnknownInviter),
		errors.Is(err, gorm.ErrRecordNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrAlreadyReferred),
		errors.Is(err, services.ErrSelfReferral),
		errors.Is(err, services.ErrBonusAlreadyClaimed),
		errors.Is(err, services.ErrNotPending):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrUnauthorized),
		errors.Is(err, services.ErrAccountBlocked):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrStorageUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func userCtx(c *fiber.Ctx) (int64, bool) {
	return c.Locals("user_id").(int64), c.Locals("subscribed").(bool)
}

// SetupEconomyRoutes wires the user-facing economy surface. The dispatcher
// authenticates, maps chat identity to user id, and performs the channel
// subscription check; these routes trust the forwarded context.
func SetupEconomyRoutes(
	app *fiber.App,
	accounts *services.AccountService,
	ledger *services.LedgerService,
	referrals *services.ReferralService,
	bonus *services.BonusService,
	withdrawals *services.WithdrawalService,
	investments *services.InvestmentService,
) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/user/register", func(c *fiber.Ctx) error {
		userID, subscribed := userCtx(c)
		account, err := accounts.GetOrCreate(userID)
		if err != nil {
			return respondError(c, err)
		}
		if account.Subscribed != subscribed {
			if err := accounts.SetSubscribed(userID, subscribed); err != nil {
				return respondError(c, err)
			}
			account.Subscribed = subscribed
		}
		return c.JSON(account)
	})

	secured.Get("/user/balance", func(c *fiber.Ctx) error {
		userID, _ := userCtx(c)
		account, err := accounts.Get(userID)
		if err != nil {
			return respondError(c, err)
		}
		balance, err := ledger.BalanceOf(userID)
		if err != nil {
			return respondError(c, err)
		}
		resp := fiber.Map{
			"user_id":         account.UserID,
			"balance":         balance,
			"lifetime_earned": account.LifetimeEarned,
			"withdrawn":       account.Withdrawn,
			"level":           account.Level,
		}
		if next, missing, ok := services.NextLevel(ledger.Levels, account.LifetimeEarned); ok {
			resp["next_level"] = next
			resp["next_level_missing"] = missing
		}
		return c.JSON(resp)
	})

	secured.Get("/user/ledger", func(c *fiber.Ctx) error {
		userID, _ := userCtx(c)
		entries, err := ledger.EntriesFor(userID, c.QueryInt("limit", 50))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entries)
	})

	secured.Post("/user/referral", func(c *fiber.Ctx) error {
		userID, subscribed := userCtx(c)
		var req struct {
			Code string `json:"code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		referral, err := referrals.Attribute(userID, req.Code, subscribed)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(referral)
	})

	secured.Get("/user/referral/stats", func(c *fiber.Ctx) error {
		userID, _ := userCtx(c)
		stats, err := referrals.StatsFor(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	})

	secured.Post("/user/bonus/claim", func(c *fiber.Ctx) error {
		userID, subscribed := userCtx(c)
		entry, err := bonus.ClaimDailyBonus(userID, subscribed)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	secured.Get("/user/bonus/next", func(c *fiber.Ctx) error {
		userID, _ := userCtx(c)
		wait, err := bonus.NextClaimIn(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"claimable_in_seconds": int64(wait.Seconds())})
	})

	secured.Post("/user/withdrawals", func(c *fiber.Ctx) error {
		userID, subscribed := userCtx(c)
		var req struct {
			Amount  decimal.Decimal     `json:"amount"`
			Method  models.PayoutMethod `json:"method"`
			Details string              `json:"details"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		request, err := withdrawals.Request(userID, req.Amount, req.Method, req.Details, subscribed)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(request)
	})

	secured.Get("/user/withdrawals", func(c *fiber.Ctx) error {
		userID, _ := userCtx(c)
		history, err := withdrawals.HistoryFor(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(history)
	})

	secured.Post("/user/investments", func(c *fiber.Ctx) error {
		userID, subscribed := userCtx(c)
		var req struct {
			PlanID string          `json:"plan_id"`
			Amount decimal.Decimal `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		investment, err := investments.Invest(userID, req.PlanID, req.Amount, subscribed)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(investment)
	})

	secured.Get("/user/investments", func(c *fiber.Ctx) error {
		userID, _ := userCtx(c)
		list, err := investments.For(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	secured.Get("/user/investments/stats", func(c *fiber.Ctx) error {
		userID, _ := userCtx(c)
		stats, err := investments.StatsFor(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	})
}
