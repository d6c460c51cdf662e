package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashBase is a collector's starting cash float for one day. At most one row
// exists per (collector, date); registering again the same day overwrites
// the amount.
type CashBase struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CollectorID uuid.UUID       `json:"collector_id" db:"collector_id"`
	Date        time.Time       `json:"date" db:"date"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Expense is an operational expense entry. Appends only; several per day
// are allowed.
type Expense struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CollectorID uuid.UUID       `json:"collector_id" db:"collector_id"`
	Date        time.Time       `json:"date" db:"date"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type RegisterCashBaseRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type RegisterExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description" validate:"required"`
}
