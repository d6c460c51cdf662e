package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jfcastellanos/prestamos-engine/internal/domain"
)

// ClientRepository defines the interface for client/loan data operations
type ClientRepository interface {
	// Create inserts a new client together with their loan
	Create(ctx context.Context, client *domain.Client) error

	// GetByID retrieves a client by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)

	// List retrieves a collector's clients, optionally filtered by state
	// and a search term over name, national ID and phone
	List(ctx context.Context, collectorID uuid.UUID, filter domain.ClientFilter) ([]*domain.Client, error)

	// Update rewrites a client's editable fields
	Update(ctx context.Context, client *domain.Client) error

	// UpdateState persists a new loan state
	UpdateState(ctx context.Context, id uuid.UUID, state string) error

	// CountActive counts a collector's clients currently in the active state
	CountActive(ctx context.Context, collectorID uuid.UUID) (int, error)

	// SumOriginated sums net principal and fees of loans originated in
	// [from, to) for a collector
	SumOriginated(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (lent, fees decimal.Decimal, err error)
}

// PaymentRepository defines the interface for payment data operations.
// Create and Delete run the payment write and the owning client's state
// recompute inside one database transaction; no intermediate state is ever
// observable.
type PaymentRepository interface {
	// Create inserts a payment and re-derives the owning client's state
	Create(ctx context.Context, payment *domain.Payment) error

	// Delete removes a payment and re-derives the owning client's state
	Delete(ctx context.Context, id uuid.UUID) error

	// GetByID retrieves a single payment
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// ListByClient retrieves all payments for one client, newest first
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Payment, error)

	// List retrieves a collector's payments with optional client and date
	// filters, joined with client names
	List(ctx context.Context, collectorID uuid.UUID, filter domain.PaymentFilter) ([]*domain.PaymentRecord, error)

	// TotalPaid sums all payments for a client; zero for no payments
	TotalPaid(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)

	// SumByMethod sums a collector's payments in [from, to), split by
	// method, together with the number of payments
	SumByMethod(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (cash, digital decimal.Decimal, count int, err error)
}

// CashFlowRepository defines the interface for cash base and expense rows
type CashFlowRepository interface {
	// UpsertBase registers the day's cash base, overwriting any existing
	// row for the same (collector, date)
	UpsertBase(ctx context.Context, base *domain.CashBase) error

	// SumBases sums cash bases registered in [from, to)
	SumBases(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (decimal.Decimal, error)

	// CreateExpense appends an expense entry
	CreateExpense(ctx context.Context, expense *domain.Expense) error

	// SumExpenses sums expenses registered in [from, to)
	SumExpenses(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by unique username
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List retrieves all users ordered by display name
	List(ctx context.Context) ([]*domain.User, error)

	// ListCollectors retrieves all non-admin users
	ListCollectors(ctx context.Context) ([]*domain.User, error)

	// UpdatePassword stores a new password hash
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// Delete removes a user
	Delete(ctx context.Context, id uuid.UUID) error
}
