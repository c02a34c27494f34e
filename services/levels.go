package services

import (
	"earn-bot-system/config"

	"github.com/shopspring/decimal"
)

// LevelOf derives the display tier from cumulative lifetime earnings. Pure
// function of the threshold table: tier N applies while earned >= threshold[N]
// and below threshold[N+1].
func LevelOf(levels []config.LevelThreshold, lifetimeEarned decimal.Decimal) string {
	if len(levels) == 0 {
		return ""
	}
	current := levels[0].Name
	for _, lt := range levels {
		if lifetimeEarned.Cmp(lt.Min) >= 0 {
			current = lt.Name
		}
	}
	return current
}

// NextLevel returns the next tier and how much more must be earned to reach
// it; ok is false at the top of the table.
func NextLevel(levels []config.LevelThreshold, lifetimeEarned decimal.Decimal) (name string, missing decimal.Decimal, ok bool) {
	for _, lt := range levels {
		if lifetimeEarned.Cmp(lt.Min) < 0 {
			return lt.Name, lt.Min.Sub(lifetimeEarned), true
		}
	}
	return "", decimal.Zero, false
}
