package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailySummary is one collector's collections for a single day. The active
// client count is the current total, not filtered by the day.
type DailySummary struct {
	Date          time.Time       `json:"date"`
	CashTotal     decimal.Decimal `json:"cash_total"`
	DigitalTotal  decimal.Decimal `json:"digital_total"`
	Total         decimal.Decimal `json:"total"`
	PaymentCount  int             `json:"payment_count"`
	ActiveClients int             `json:"active_clients"`
}

// WeeklySummary covers the ISO week (Monday onward) containing "now".
//
// Two bottom lines are exposed on purpose: Net is collections minus
// expenses, while FinalBalance reconstructs the gross cash position by
// adding the base and the fees withheld at disbursement back in:
//
//	FinalBalance = Base + Collected + Fees - Lent - Expenses
type WeeklySummary struct {
	WeekStart    time.Time       `json:"week_start"`
	Base         decimal.Decimal `json:"base"`
	Collected    decimal.Decimal `json:"collected"`
	Cash         decimal.Decimal `json:"cash"`
	Digital      decimal.Decimal `json:"digital"`
	Lent         decimal.Decimal `json:"lent"`
	Fees         decimal.Decimal `json:"fees"`
	Expenses     decimal.Decimal `json:"expenses"`
	Net          decimal.Decimal `json:"net"`
	FinalBalance decimal.Decimal `json:"final_balance"`
}

// CollectorSummary is one row of the admin dashboard: a collector's
// day-scoped figures plus their current active client count.
type CollectorSummary struct {
	CollectorID    uuid.UUID       `json:"collector_id"`
	Username       string          `json:"username"`
	DisplayName    string          `json:"display_name"`
	ActiveClients  int             `json:"active_clients"`
	CollectedToday decimal.Decimal `json:"collected_today"`
	BaseToday      decimal.Decimal `json:"base_today"`
	ExpensesToday  decimal.Decimal `json:"expenses_today"`
}

// CollectorActivity is a single day of one collector's activity, used for
// per-day history views.
type CollectorActivity struct {
	Date          time.Time       `json:"date"`
	ActiveClients int             `json:"active_clients"`
	Lent          decimal.Decimal `json:"lent"`
	Collected     decimal.Decimal `json:"collected"`
	Expenses      decimal.Decimal `json:"expenses"`
}
