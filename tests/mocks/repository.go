package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jfcastellanos/prestamos-engine/internal/domain"
)

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context, collectorID uuid.UUID, filter domain.ClientFilter) ([]*domain.Client, error) {
	args := m.Called(ctx, collectorID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, client *domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) UpdateState(ctx context.Context, id uuid.UUID, state string) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}

func (m *MockClientRepository) CountActive(ctx context.Context, collectorID uuid.UUID) (int, error) {
	args := m.Called(ctx, collectorID)
	return args.Int(0), args.Error(1)
}

func (m *MockClientRepository) SumOriginated(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, collectorID, from, to)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, collectorID uuid.UUID, filter domain.PaymentFilter) ([]*domain.PaymentRecord, error) {
	args := m.Called(ctx, collectorID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepository) TotalPaid(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SumByMethod(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (decimal.Decimal, decimal.Decimal, int, error) {
	args := m.Called(ctx, collectorID, from, to)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Int(2), args.Error(3)
}

type MockCashFlowRepository struct {
	mock.Mock
}

func (m *MockCashFlowRepository) UpsertBase(ctx context.Context, base *domain.CashBase) error {
	args := m.Called(ctx, base)
	return args.Error(0)
}

func (m *MockCashFlowRepository) SumBases(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, collectorID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCashFlowRepository) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockCashFlowRepository) SumExpenses(ctx context.Context, collectorID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, collectorID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListCollectors(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
