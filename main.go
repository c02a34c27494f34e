package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"earn-bot-system/config"
	"earn-bot-system/handlers"
	"earn-bot-system/middleware"
	"earn-bot-system/models"
	"earn-bot-system/services"
	"earn-bot-system/utils"
	"earn-bot-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	app := fiber.New(fiber.Config{})

	// Health endpoint stays open: the keep-alive pinger and host probes hit
	// it without a service token.
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "earn-bot-system"})
	})

	// 🔐 GLOBAL: only dispatcher requests allowed past this point
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID, X-Subscribed",
	}))

	r2Enabled, err := utils.InitR2()
	if err != nil {
		log.Fatal("failed to initialize R2 client: ", err)
	}

	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.Account{},
		&models.LedgerEntry{},
		&models.Referral{},
		&models.WithdrawalRequest{},
		&models.Investment{},
	); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	ledgerService := services.NewLedgerService(db, cfg.LevelThresholds)
	accountService := services.NewAccountService(db, cfg.LevelThresholds)
	referralService := services.NewReferralService(db, ledgerService, accountService, cfg.ReferralBonus)
	bonusService := services.NewBonusService(ledgerService, accountService, cfg.DailyBonus)
	withdrawalService := services.NewWithdrawalService(db, ledgerService, accountService, cfg.MinWithdraw)
	investmentService := services.NewInvestmentService(db, ledgerService, accountService, cfg.InvestmentPlans)
	statsService := services.NewStatsService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go workers.PollBackups(ctx, workers.NewBackupRunner(cfg, r2Enabled), cfg.BackupInterval)
	go workers.PollKeepAlive(ctx, cfg.PublicURL, cfg.KeepAliveInterval)

	investmentService.StartAccrualScheduler()

	handlers.SetupEconomyRoutes(app, accountService, ledgerService, referralService, bonusService, withdrawalService, investmentService)
	handlers.SetupAdminRoutes(app, cfg, accountService, ledgerService, withdrawalService, statsService)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Economy core running on http://localhost:%s", cfg.Port)
	log.Println("✅ Investment accrual scheduler running")
	log.Printf("✅ Backups every %s (R2 upload: %t)", cfg.BackupInterval, r2Enabled)

	<-ctx.Done()
	log.Println("Shutting down server...")
}

// openDatabase picks the driver from the DSN: postgres for server URLs, the
// sqlite file otherwise (the default local setup).
func openDatabase(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(strings.TrimPrefix(dsn, "file:")), &gorm.Config{})
}
