package utils

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var currencyPrinter = message.NewPrinter(language.Russian)

// FormatCurrency renders an amount for bot/admin screens, e.g. "1 234,5 ₽".
func FormatCurrency(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return currencyPrinter.Sprintf("%v ₽", number.Decimal(f, number.MaxFractionDigits(2)))
}

// FormatDuration renders a wait time like "5ч 12м" for the bonus countdown.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dд %dч %dм", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dч %dм", hours, minutes)
	}
	return fmt.Sprintf("%dм", minutes)
}

var nonDigits = regexp.MustCompile(`\D`)

// ValidatePayoutDetails checks the payout destination for a withdrawal method:
// card numbers are 16-19 digits, phone wallets 11 digits starting with 7 or 8,
// YooMoney wallets 15 digits starting with 4100.
func ValidatePayoutDetails(method, details string) error {
	digits := nonDigits.ReplaceAllString(details, "")

	switch method {
	case "card":
		if len(digits) < 16 || len(digits) > 19 {
			return fmt.Errorf("card number must be 16-19 digits")
		}
	case "qiwi":
		if len(digits) != 11 || (digits[0] != '7' && digits[0] != '8') {
			return fmt.Errorf("phone number must be 11 digits starting with 7 or 8")
		}
	case "ymoney":
		if len(digits) != 15 || digits[:4] != "4100" {
			return fmt.Errorf("wallet number must be 15 digits starting with 4100")
		}
	default:
		return fmt.Errorf("unknown payout method %q", method)
	}
	return nil
}
