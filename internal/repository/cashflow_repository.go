package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jfcastellanos/prestamos-engine/internal/domain"
)

type cashFlowRepository struct {
	db *sqlx.DB
}

func NewCashFlowRepository(db *sqlx.DB) CashFlowRepository {
	return &cashFlowRepository{db: db}
}

// UpsertBase overwrites the amount when a base already exists for the day.
// A second registration is a correction, not an addition.
func (r *cashFlowRepository) UpsertBase(ctx context.Context, base *domain.CashBase) error {
	query := `
		INSERT INTO cash_bases (id, collector_id, date, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collector_id, date)
		DO UPDATE SET amount = EXCLUDED.amount
	`

	_, err := r.db.ExecContext(ctx, query,
		base.ID,
		base.CollectorID,
		base.Date,
		base.Amount,
		base.CreatedAt,
	)

	return err
}

func (r *cashFlowRepository) SumBases(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM cash_bases
		WHERE collector_id = $1 AND date >= $2 AND date < $3
	`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, collectorID, from, to); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *cashFlowRepository) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	query := `
		INSERT INTO expenses (id, collector_id, date, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		expense.ID,
		expense.CollectorID,
		expense.Date,
		expense.Amount,
		expense.Description,
		expense.CreatedAt,
	)

	return err
}

func (r *cashFlowRepository) SumExpenses(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE collector_id = $1 AND date >= $2 AND date < $3
	`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, collectorID, from, to); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
