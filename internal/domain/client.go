package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client states. "atrasado" (overdue) is accepted on explicit state updates
// but is never derived by any rule; only an administrator sets it.
const (
	ClientStateActive   = "activo"
	ClientStatePaid     = "pagado"
	ClientStateOverdue  = "atrasado"
	ClientStateInactive = "inactivo"
)

// Term kinds accepted at registration. Anything else falls back to weekly.
const (
	TermDaily    = "diario"
	TermWeekly   = "semanal"
	TermBiweekly = "quincenal"
	TermMonthly  = "mensual"
)

// Client is a borrower together with their single active loan. Principal is
// the NET amount handed over: the requested amount minus the withheld fee.
type Client struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	CollectorID        uuid.UUID       `json:"collector_id" db:"collector_id"`
	Name               string          `json:"name" db:"name"`
	NationalID         string          `json:"national_id" db:"national_id"`
	Phone              string          `json:"phone" db:"phone"`
	Principal          decimal.Decimal `json:"principal" db:"principal"`
	OriginationDate    time.Time       `json:"origination_date" db:"origination_date"`
	TermKind           string          `json:"term_kind" db:"term_kind"`
	InterestRate       decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	Fee                decimal.Decimal `json:"fee" db:"fee"`
	MinimumInstallment decimal.Decimal `json:"minimum_installment" db:"minimum_installment"`
	TermDays           int             `json:"term_days" db:"term_days"`
	State              string          `json:"state" db:"state"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// Balance holds the derived accounting figures for one loan.
type Balance struct {
	Principal    decimal.Decimal `json:"principal"`
	Interest     decimal.Decimal `json:"interest"`
	Fee          decimal.Decimal `json:"fee"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	PercentPaid  decimal.Decimal `json:"percent_paid"`
}

// DTOs for requests and responses

type RegisterClientRequest struct {
	Name         string           `json:"name" validate:"required"`
	NationalID   string           `json:"national_id" validate:"required"`
	Phone        string           `json:"phone" validate:"required"`
	Amount       decimal.Decimal  `json:"amount" validate:"required"`
	TermKind     string           `json:"term_kind"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
}

// UpdateClientRequest is a full edit of a client and their loan terms. The
// fee, minimum installment and term days are re-derived from the submitted
// amount, never taken from the caller.
type UpdateClientRequest struct {
	Name         string           `json:"name" validate:"required"`
	NationalID   string           `json:"national_id" validate:"required"`
	Phone        string           `json:"phone" validate:"required"`
	Amount       decimal.Decimal  `json:"amount" validate:"required"`
	TermKind     string           `json:"term_kind"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
}

type UpdateClientStateRequest struct {
	State string `json:"state" validate:"required,oneof=activo pagado atrasado inactivo"`
}

type ClientDetailResponse struct {
	Client       *Client         `json:"client"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	PercentPaid  decimal.Decimal `json:"percent_paid"`
	DaysElapsed  int             `json:"days_elapsed"`
}

// ClientFilter narrows client listings. Empty fields are ignored.
type ClientFilter struct {
	State  string
	Search string
}
