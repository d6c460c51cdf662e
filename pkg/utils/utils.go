package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	installmentStep = decimal.NewFromInt(50000)
	installmentUnit = decimal.NewFromInt(2000)

	// termDays maps a repayment cadence label to its day count.
	termDays = map[string]int{
		"diario":    1,
		"semanal":   7,
		"quincenal": 15,
		"mensual":   30,
	}
)

// DefaultInterestRate is applied when a loan is registered without an explicit rate.
var DefaultInterestRate = decimal.NewFromFloat(0.20)

// MinimumInstallment calculates the minimum payment increment for a loan.
// The rule is 2,000 for every full 50,000 of principal, with a flat floor
// of 2,000 below 50,000. The withheld fee (seguro) equals one minimum
// installment by construction.
func MinimumInstallment(principal decimal.Decimal) decimal.Decimal {
	if principal.LessThan(installmentStep) {
		return installmentUnit
	}
	return principal.Div(installmentStep).Floor().Mul(installmentUnit)
}

// TermDays maps a term kind to its day count. Unrecognized kinds fall back
// to the weekly term (7 days) rather than failing.
func TermDays(termKind string) int {
	if days, ok := termDays[termKind]; ok {
		return days
	}
	return 7
}

// TotalPayable returns the full repayment obligation for a loan:
// principal plus simple interest on the principal. The fee is withheld at
// disbursement (the stored principal is already net of it), so it is never
// part of what the client owes back.
func TotalPayable(principal, rate decimal.Decimal) decimal.Decimal {
	return principal.Add(principal.Mul(rate))
}

// Outstanding returns total payable minus total paid. Negative values mean
// the loan is overpaid; callers treat that as fully satisfied, not a credit.
func Outstanding(principal, rate, totalPaid decimal.Decimal) decimal.Decimal {
	return TotalPayable(principal, rate).Sub(totalPaid)
}

// PercentPaid returns totalPaid as a percentage of totalPayable.
// A zero total payable yields 0 instead of dividing by zero.
func PercentPaid(totalPaid, totalPayable decimal.Decimal) decimal.Decimal {
	if totalPayable.IsZero() {
		return decimal.Zero
	}
	return totalPaid.Div(totalPayable).Mul(decimal.NewFromInt(100))
}

// StateForBalance derives a loan state from its payment total. The
// transition is bidirectional: deleting a payment that drops the total back
// below the payable amount reverts the loan to active.
func StateForBalance(totalPaid, totalPayable decimal.Decimal) string {
	if totalPaid.GreaterThanOrEqual(totalPayable) {
		return "pagado"
	}
	return "activo"
}

// StartOfWeek returns Monday 00:00 of the ISO week containing t, in t's
// location. Weekly rollups filter on dates at or after this boundary.
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	day := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// DaysSince returns whole days elapsed from a date to now.
func DaysSince(date time.Time, now time.Time) int {
	return int(now.Sub(date).Hours() / 24)
}
