package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCash    = "efectivo"
	PaymentMethodDigital = "digital"
)

// Payment is immutable once created; the only mutation is a hard delete,
// which re-derives the owning client's state.
type Payment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	ClientID  uuid.UUID       `json:"client_id" db:"client_id"`
	Date      time.Time       `json:"date" db:"date"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Method    string          `json:"method" db:"method"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// PaymentRecord is a payment joined with its client's name for listings.
type PaymentRecord struct {
	Payment
	ClientName string `json:"client_name" db:"client_name"`
}

type RegisterPaymentRequest struct {
	ClientID uuid.UUID       `json:"client_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Method   string          `json:"method" validate:"required,oneof=efectivo digital"`
	Date     *time.Time      `json:"date,omitempty"`
	// IdempotencyKey is optional; when present, resubmitting the same key
	// within a day is rejected instead of creating a second payment.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// PaymentFilter narrows payment listings. Zero values are ignored.
type PaymentFilter struct {
	ClientID uuid.UUID
	From     time.Time
	To       time.Time
}
