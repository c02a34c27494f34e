package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LevelThreshold maps a level name to the minimum lifetime earnings required.
type LevelThreshold struct {
	Name string
	Min  decimal.Decimal
}

// InvestmentPlan mirrors the plan catalog offered in the bot menu.
type InvestmentPlan struct {
	Name        string
	MinAmount   decimal.Decimal
	DailyProfit decimal.Decimal // fraction per day, e.g. 0.01 = 1%
	TermDays    int
}

type Config struct {
	Port         string
	DatabaseURL  string
	ServiceToken string

	// Bot / channel
	BotToken    string
	BotName     string
	ChannelID   string
	ChannelLink string
	AdminIDs    []int64

	// Economy
	MinWithdraw     decimal.Decimal
	DailyBonus      decimal.Decimal
	ReferralBonus   decimal.Decimal
	LevelThresholds []LevelThreshold
	InvestmentPlans map[string]InvestmentPlan

	// Backups
	BackupDir      string
	BackupInterval time.Duration
	BackupKeep     int

	// Keep-alive pinger (free-tier hosts idle out without it)
	PublicURL         string
	KeepAliveInterval time.Duration
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "5300"),
		DatabaseURL:  getEnv("DATABASE_URL", "file:earnbot.db"),
		ServiceToken: getEnv("ECONOMY_SERVICE_TOKEN", ""),

		BotToken:    getEnv("BOT_TOKEN", ""),
		BotName:     getEnv("BOT_NAME", "earn-bot"),
		ChannelID:   getEnv("CHANNEL_ID", ""),
		ChannelLink: getEnv("CHANNEL_LINK", ""),
		AdminIDs:    getEnvAsInt64Slice("ADMIN_IDS"),

		MinWithdraw:   getEnvAsDecimal("MIN_WITHDRAW", "50"),
		DailyBonus:    getEnvAsDecimal("DAILY_BONUS", "2"),
		ReferralBonus: getEnvAsDecimal("REFERRAL_BONUS", "5"),

		BackupDir:      getEnv("DATABASE_BACKUP_DIR", "backups"),
		BackupInterval: getEnvAsDuration("DATABASE_BACKUP_INTERVAL", 24*time.Hour),
		BackupKeep:     getEnvAsInt("DATABASE_BACKUP_KEEP", 5),

		PublicURL:         getEnv("PUBLIC_APP_URL", ""),
		KeepAliveInterval: getEnvAsDuration("KEEPALIVE_INTERVAL", 10*time.Minute),
	}

	var err error
	cfg.LevelThresholds, err = parseLevelThresholds(getEnv("LEVEL_THRESHOLDS",
		"bronze:0,silver:100,gold:500,platinum:2000,diamond:10000"))
	if err != nil {
		return nil, err
	}

	cfg.InvestmentPlans = defaultInvestmentPlans()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultInvestmentPlans() map[string]InvestmentPlan {
	return map[string]InvestmentPlan{
		"basic": {
			Name:        "Basic",
			MinAmount:   getEnvAsDecimal("PLAN_BASIC_MIN", "100"),
			DailyProfit: getEnvAsDecimal("PLAN_BASIC_PROFIT", "0.01"),
			TermDays:    30,
		},
		"advanced": {
			Name:        "Advanced",
			MinAmount:   getEnvAsDecimal("PLAN_ADVANCED_MIN", "500"),
			DailyProfit: getEnvAsDecimal("PLAN_ADVANCED_PROFIT", "0.015"),
			TermDays:    30,
		},
		"vip": {
			Name:        "VIP",
			MinAmount:   getEnvAsDecimal("PLAN_VIP_MIN", "1000"),
			DailyProfit: getEnvAsDecimal("PLAN_VIP_PROFIT", "0.02"),
			TermDays:    30,
		},
	}
}

func (c *Config) validate() error {
	for name, amount := range map[string]decimal.Decimal{
		"MIN_WITHDRAW":   c.MinWithdraw,
		"DAILY_BONUS":    c.DailyBonus,
		"REFERRAL_BONUS": c.ReferralBonus,
	} {
		if amount.IsNegative() {
			return fmt.Errorf("config: %s must not be negative, got %s", name, amount)
		}
	}

	if len(c.LevelThresholds) == 0 {
		return fmt.Errorf("config: LEVEL_THRESHOLDS must define at least one level")
	}
	for i, lt := range c.LevelThresholds {
		if lt.Min.IsNegative() {
			return fmt.Errorf("config: level %q has negative threshold %s", lt.Name, lt.Min)
		}
		if i > 0 && lt.Min.Cmp(c.LevelThresholds[i-1].Min) <= 0 {
			return fmt.Errorf("config: level thresholds must be strictly increasing, %q (%s) does not exceed %q (%s)",
				lt.Name, lt.Min, c.LevelThresholds[i-1].Name, c.LevelThresholds[i-1].Min)
		}
	}

	for id, plan := range c.InvestmentPlans {
		if !plan.MinAmount.IsPositive() {
			return fmt.Errorf("config: plan %q minimum must be positive", id)
		}
		if !plan.DailyProfit.IsPositive() || plan.DailyProfit.Cmp(decimal.NewFromInt(1)) >= 0 {
			return fmt.Errorf("config: plan %q daily profit must be in (0, 1)", id)
		}
		if plan.TermDays <= 0 {
			return fmt.Errorf("config: plan %q term must be positive", id)
		}
	}

	if c.BackupKeep < 1 {
		return fmt.Errorf("config: DATABASE_BACKUP_KEEP must be at least 1")
	}
	return nil
}

// IsAdmin reports whether the given telegram user id is a configured operator.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// parseLevelThresholds parses "name:min,name:min,..." sorted by threshold.
func parseLevelThresholds(raw string) ([]LevelThreshold, error) {
	var out []LevelThreshold
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, minStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("config: invalid level threshold %q, want name:min", part)
		}
		min, err := decimal.NewFromString(strings.TrimSpace(minStr))
		if err != nil {
			return nil, fmt.Errorf("config: invalid threshold for level %q: %w", name, err)
		}
		out = append(out, LevelThreshold{Name: strings.TrimSpace(name), Min: min})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Min.Cmp(out[j].Min) < 0 })
	return out, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if val, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if val, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	if val, err := decimal.NewFromString(getEnv(key, "")); err == nil {
		return val
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}

func getEnvAsInt64Slice(key string) []int64 {
	var out []int64
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}
