package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jfcastellanos/prestamos-engine/internal/config"
	"github.com/jfcastellanos/prestamos-engine/internal/domain"
	"github.com/jfcastellanos/prestamos-engine/internal/repository"
	customError "github.com/jfcastellanos/prestamos-engine/pkg/errors"
	"github.com/jfcastellanos/prestamos-engine/pkg/utils"
)

// LoanService owns loan accounting: client registration with fee
// withholding, balance computation, the payment-driven state policy and the
// deletion gate.
type LoanService struct {
	clientRepo  repository.ClientRepository
	paymentRepo repository.PaymentRepository
	redis       *redis.Client
	config      *config.Config
}

func NewLoanService(
	clientRepo repository.ClientRepository,
	paymentRepo repository.PaymentRepository,
	redis *redis.Client,
	config *config.Config,
) *LoanService {
	return &LoanService{
		clientRepo:  clientRepo,
		paymentRepo: paymentRepo,
		redis:       redis,
		config:      config,
	}
}

// RegisterClient creates a client together with their loan. The fee
// (seguro) equals one minimum installment of the requested amount and is
// withheld up front: the stored principal is the net amount handed over.
func (s *LoanService) RegisterClient(ctx context.Context, collectorID uuid.UUID, request *domain.RegisterClientRequest) (*domain.Client, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidAmount(request.Amount.String())
	}

	rate := s.defaultInterestRate()
	if request.InterestRate != nil {
		rate = *request.InterestRate
	}

	fee := utils.MinimumInstallment(request.Amount)
	if !request.Amount.GreaterThan(fee) {
		return nil, customError.WrapInvalidAmount(request.Amount.String())
	}
	now := time.Now()

	client := &domain.Client{
		ID:                 uuid.New(),
		CollectorID:        collectorID,
		Name:               request.Name,
		NationalID:         request.NationalID,
		Phone:              request.Phone,
		Principal:          request.Amount.Sub(fee),
		OriginationDate:    dateOnly(now),
		TermKind:           request.TermKind,
		InterestRate:       rate,
		Fee:                fee,
		MinimumInstallment: fee,
		TermDays:           utils.TermDays(request.TermKind),
		State:              domain.ClientStateActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return client, nil
}

// GetClient returns a client with their derived balance figures. A zero
// collectorID skips the ownership check (admin read path).
func (s *LoanService) GetClient(ctx context.Context, collectorID uuid.UUID, clientID uuid.UUID) (*domain.ClientDetailResponse, error) {
	client, err := s.getOwnedClient(ctx, collectorID, clientID)
	if err != nil {
		return nil, err
	}

	balance, err := s.Balance(ctx, client)
	if err != nil {
		return nil, err
	}

	return &domain.ClientDetailResponse{
		Client:       client,
		TotalPaid:    balance.TotalPaid,
		Outstanding:  balance.Outstanding,
		TotalPayable: balance.TotalPayable,
		PercentPaid:  balance.PercentPaid,
		DaysElapsed:  utils.DaysSince(client.OriginationDate, time.Now()),
	}, nil
}

// ListClients returns a collector's clients with optional state and search
// filters.
func (s *LoanService) ListClients(ctx context.Context, collectorID uuid.UUID, filter domain.ClientFilter) ([]*domain.Client, error) {
	clients, err := s.clientRepo.List(ctx, collectorID, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return clients, nil
}

// Balance computes the accounting figures for one client. Total payable is
// principal plus interest on the net principal; the withheld fee is not a
// repayment obligation. A client with no payments has TotalPaid zero.
func (s *LoanService) Balance(ctx context.Context, client *domain.Client) (*domain.Balance, error) {
	totalPaid, err := s.paymentRepo.TotalPaid(ctx, client.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	totalPayable := utils.TotalPayable(client.Principal, client.InterestRate)

	return &domain.Balance{
		Principal:    client.Principal,
		Interest:     client.Principal.Mul(client.InterestRate),
		Fee:          client.Fee,
		TotalPayable: totalPayable,
		TotalPaid:    totalPaid,
		Outstanding:  totalPayable.Sub(totalPaid),
		PercentPaid:  utils.PercentPaid(totalPaid, totalPayable),
	}, nil
}

// UpdateClient rewrites a client's identity fields and loan terms. The fee,
// minimum installment and term days are re-derived from the submitted amount
// exactly as at registration; the state and origination date are untouched.
func (s *LoanService) UpdateClient(ctx context.Context, collectorID uuid.UUID, clientID uuid.UUID, request *domain.UpdateClientRequest) (*domain.Client, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidAmount(request.Amount.String())
	}

	client, err := s.getOwnedClient(ctx, collectorID, clientID)
	if err != nil {
		return nil, err
	}

	rate := s.defaultInterestRate()
	if request.InterestRate != nil {
		rate = *request.InterestRate
	}

	fee := utils.MinimumInstallment(request.Amount)
	if !request.Amount.GreaterThan(fee) {
		return nil, customError.WrapInvalidAmount(request.Amount.String())
	}

	client.Name = request.Name
	client.NationalID = request.NationalID
	client.Phone = request.Phone
	client.Principal = request.Amount.Sub(fee)
	client.TermKind = request.TermKind
	client.InterestRate = rate
	client.Fee = fee
	client.MinimumInstallment = fee
	client.TermDays = utils.TermDays(request.TermKind)
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return client, nil
}

// UpdateState sets a client state explicitly. This is the administrative
// path; "atrasado" is only ever reachable through here, never derived.
func (s *LoanService) UpdateState(ctx context.Context, collectorID uuid.UUID, clientID uuid.UUID, state string) error {
	if _, err := s.getOwnedClient(ctx, collectorID, clientID); err != nil {
		return err
	}

	if err := s.clientRepo.UpdateState(ctx, clientID, state); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// DeleteClient soft-deletes a client (state -> inactivo). Refused with
// BalancePending while any balance remains outstanding; a loan with debt is
// never removed.
func (s *LoanService) DeleteClient(ctx context.Context, collectorID uuid.UUID, clientID uuid.UUID) error {
	client, err := s.getOwnedClient(ctx, collectorID, clientID)
	if err != nil {
		return err
	}

	balance, err := s.Balance(ctx, client)
	if err != nil {
		return err
	}

	if balance.Outstanding.IsPositive() {
		return customError.WrapBalancePending(clientID.String(), balance.Outstanding.String())
	}

	if err := s.clientRepo.UpdateState(ctx, clientID, domain.ClientStateInactive); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// RegisterPayment records a payment against a client's loan. The repository
// recomputes the loan state in the same transaction, so callers observe the
// payment and the resulting state together.
//
// When the request carries an idempotency key, a resubmission of the same
// key within the configured TTL is rejected instead of double-posting.
func (s *LoanService) RegisterPayment(ctx context.Context, collectorID uuid.UUID, request *domain.RegisterPaymentRequest) (*domain.Payment, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidAmount(request.Amount.String())
	}

	if _, err := s.getOwnedClient(ctx, collectorID, request.ClientID); err != nil {
		return nil, err
	}

	var idemKey string
	if request.IdempotencyKey != "" && s.redis != nil {
		idemKey = fmt.Sprintf("payment:idem:%s:%s", collectorID, request.IdempotencyKey)
		ok, err := s.redis.SetNX(ctx, idemKey, request.ClientID.String(), s.config.GetIdempotencyTTL()).Result()
		if err != nil {
			return nil, customError.WrapCacheError(err)
		}
		if !ok {
			return nil, customError.WrapDuplicatePayment(request.IdempotencyKey)
		}
	}

	date := dateOnly(time.Now())
	if request.Date != nil {
		date = dateOnly(*request.Date)
	}

	payment := &domain.Payment{
		ID:        uuid.New(),
		ClientID:  request.ClientID,
		Date:      date,
		Amount:    request.Amount,
		Method:    request.Method,
		CreatedAt: time.Now(),
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		// Release the idempotency key so a retry of the failed submission
		// is not rejected as a duplicate for the whole TTL.
		if idemKey != "" {
			s.redis.Del(ctx, idemKey)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return payment, nil
}

// DeletePayment removes a payment. The owning client's state is re-derived
// inside the repository transaction, reverting paid back to active when the
// sum drops below the payable amount.
func (s *LoanService) DeletePayment(ctx context.Context, collectorID uuid.UUID, paymentID uuid.UUID) error {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapPaymentNotFound(paymentID.String())
		}
		return customError.WrapDatabaseError(err)
	}

	if _, err := s.getOwnedClient(ctx, collectorID, payment.ClientID); err != nil {
		return err
	}

	if err := s.paymentRepo.Delete(ctx, paymentID); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// ListPayments returns a collector's payments with optional filters.
func (s *LoanService) ListPayments(ctx context.Context, collectorID uuid.UUID, filter domain.PaymentFilter) ([]*domain.PaymentRecord, error) {
	records, err := s.paymentRepo.List(ctx, collectorID, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return records, nil
}

// ListClientPayments returns one client's payment history, newest first.
func (s *LoanService) ListClientPayments(ctx context.Context, collectorID uuid.UUID, clientID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.getOwnedClient(ctx, collectorID, clientID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// getOwnedClient fetches a client and enforces ownership. An out-of-scope
// client is reported as not found, never as forbidden, so callers cannot
// probe other collectors' books. uuid.Nil skips the check (admin reads).
func (s *LoanService) getOwnedClient(ctx context.Context, collectorID uuid.UUID, clientID uuid.UUID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapClientNotFound(clientID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if collectorID != uuid.Nil && client.CollectorID != collectorID {
		return nil, customError.WrapClientNotFound(clientID.String())
	}

	return client, nil
}

func (s *LoanService) defaultInterestRate() decimal.Decimal {
	if s.config != nil {
		return s.config.GetDefaultInterestRate()
	}
	return utils.DefaultInterestRate
}

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
