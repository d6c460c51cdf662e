package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jfcastellanos/prestamos-engine/internal/domain"
	"github.com/jfcastellanos/prestamos-engine/pkg/utils"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create inserts the payment and re-derives the client's state in the same
// transaction, so "state reflects the payment sum" holds at commit.
func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO payments (id, client_id, date, amount, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, query,
		payment.ID,
		payment.ClientID,
		payment.Date,
		payment.Amount,
		payment.Method,
		payment.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err := recomputeState(ctx, tx, payment.ClientID); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes the payment and re-derives the client's state in the same
// transaction. A paid loan reverts to active when the sum drops below the
// payable amount again.
func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var clientID uuid.UUID
	if err := tx.GetContext(ctx, &clientID, `SELECT client_id FROM payments WHERE id = $1`, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return err
	}

	if err := recomputeState(ctx, tx, clientID); err != nil {
		return err
	}

	return tx.Commit()
}

// recomputeState re-evaluates paid-vs-payable for a client and persists the
// derived state, all inside the caller's transaction. An inactive client is
// left untouched so payment deletions cannot resurrect a soft-deleted loan.
func recomputeState(ctx context.Context, tx *sqlx.Tx, clientID uuid.UUID) error {
	var client struct {
		Principal    decimal.Decimal `db:"principal"`
		InterestRate decimal.Decimal `db:"interest_rate"`
		State        string          `db:"state"`
	}
	query := `SELECT principal, interest_rate, state FROM clients WHERE id = $1`
	if err := tx.GetContext(ctx, &client, query, clientID); err != nil {
		return err
	}

	if client.State == domain.ClientStateInactive {
		return nil
	}

	var totalPaid decimal.Decimal
	query = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE client_id = $1`
	if err := tx.GetContext(ctx, &totalPaid, query, clientID); err != nil {
		return err
	}

	state := utils.StateForBalance(totalPaid, utils.TotalPayable(client.Principal, client.InterestRate))
	if state == client.State {
		return nil
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE clients SET state = $2, updated_at = $3 WHERE id = $1`,
		clientID, state, time.Now(),
	)
	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT id, client_id, date, amount, method, created_at
		FROM payments
		WHERE id = $1
	`

	var payment domain.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, client_id, date, amount, method, created_at
		FROM payments
		WHERE client_id = $1
		ORDER BY date DESC, created_at DESC
	`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, clientID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) List(ctx context.Context, collectorID uuid.UUID, filter domain.PaymentFilter) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT p.id, p.client_id, p.date, p.amount, p.method, p.created_at,
			c.name AS client_name
		FROM payments p
		JOIN clients c ON p.client_id = c.id
		WHERE c.collector_id = $1
	`
	args := []interface{}{collectorID}

	if filter.ClientID != uuid.Nil {
		args = append(args, filter.ClientID)
		query += ` AND p.client_id = $` + strconv.Itoa(len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += ` AND p.date >= $` + strconv.Itoa(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += ` AND p.date < $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY p.date DESC, p.created_at DESC`

	var records []*domain.PaymentRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *paymentRepository) TotalPaid(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE client_id = $1`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, clientID); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *paymentRepository) SumByMethod(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (decimal.Decimal, decimal.Decimal, int, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN p.method = 'efectivo' THEN p.amount ELSE 0 END), 0) AS cash,
			COALESCE(SUM(CASE WHEN p.method = 'digital' THEN p.amount ELSE 0 END), 0) AS digital,
			COUNT(p.id) AS count
		FROM payments p
		JOIN clients c ON p.client_id = c.id
		WHERE c.collector_id = $1 AND p.date >= $2 AND p.date < $3
	`

	var row struct {
		Cash    decimal.Decimal `db:"cash"`
		Digital decimal.Decimal `db:"digital"`
		Count   int             `db:"count"`
	}
	if err := r.db.GetContext(ctx, &row, query, collectorID, from, to); err != nil {
		return decimal.Zero, decimal.Zero, 0, err
	}

	return row.Cash, row.Digital, row.Count, nil
}
