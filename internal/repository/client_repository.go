package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jfcastellanos/prestamos-engine/internal/domain"
)

type clientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, collector_id, name, national_id, phone, principal,
			origination_date, term_kind, interest_rate, fee, minimum_installment,
			term_days, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.CollectorID,
		client.Name,
		client.NationalID,
		client.Phone,
		client.Principal,
		client.OriginationDate,
		client.TermKind,
		client.InterestRate,
		client.Fee,
		client.MinimumInstallment,
		client.TermDays,
		client.State,
		client.CreatedAt,
		client.UpdatedAt,
	)

	return err
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query := `
		SELECT id, collector_id, name, national_id, phone, principal,
			origination_date, term_kind, interest_rate, fee, minimum_installment,
			term_days, state, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	var client domain.Client
	err := r.db.GetContext(ctx, &client, query, id)
	if err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, collectorID uuid.UUID, filter domain.ClientFilter) ([]*domain.Client, error) {
	query := `
		SELECT id, collector_id, name, national_id, phone, principal,
			origination_date, term_kind, interest_rate, fee, minimum_installment,
			term_days, state, created_at, updated_at
		FROM clients
		WHERE collector_id = $1
	`
	args := []interface{}{collectorID}

	if filter.State != "" {
		args = append(args, filter.State)
		query += ` AND state = $2`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		placeholder := `$2`
		if filter.State != "" {
			placeholder = `$3`
		}
		query += ` AND (name ILIKE ` + placeholder +
			` OR national_id ILIKE ` + placeholder +
			` OR phone ILIKE ` + placeholder + `)`
	}

	query += ` ORDER BY origination_date DESC, created_at DESC`

	var clients []*domain.Client
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients
		SET name = $2, national_id = $3, phone = $4, principal = $5,
			origination_date = $6, term_kind = $7, interest_rate = $8, fee = $9,
			minimum_installment = $10, term_days = $11, updated_at = $12
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.Name,
		client.NationalID,
		client.Phone,
		client.Principal,
		client.OriginationDate,
		client.TermKind,
		client.InterestRate,
		client.Fee,
		client.MinimumInstallment,
		client.TermDays,
		time.Now(),
	)

	return err
}

func (r *clientRepository) UpdateState(ctx context.Context, id uuid.UUID, state string) error {
	query := `
		UPDATE clients
		SET state = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, state, time.Now())
	return err
}

func (r *clientRepository) CountActive(ctx context.Context, collectorID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM clients
		WHERE collector_id = $1 AND state = $2
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, collectorID, domain.ClientStateActive)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *clientRepository) SumOriginated(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(principal), 0) AS lent,
			COALESCE(SUM(fee), 0) AS fees
		FROM clients
		WHERE collector_id = $1 AND origination_date >= $2 AND origination_date < $3
	`

	var row struct {
		Lent decimal.Decimal `db:"lent"`
		Fees decimal.Decimal `db:"fees"`
	}
	if err := r.db.GetContext(ctx, &row, query, collectorID, from, to); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return row.Lent, row.Fees, nil
}
