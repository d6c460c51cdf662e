package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jfcastellanos/prestamos-engine/internal/domain"
	"github.com/jfcastellanos/prestamos-engine/tests/mocks"
)

func TestDailySummary(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	service := &SummaryService{
		clientRepo:  mockClientRepo,
		paymentRepo: mockPaymentRepo,
	}

	collectorID := uuid.New()
	day := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	mockPaymentRepo.On("SumByMethod", mock.Anything, collectorID, day, next).
		Return(decimal.NewFromInt(80000), decimal.NewFromInt(25000), 9, nil)
	mockClientRepo.On("CountActive", mock.Anything, collectorID).Return(14, nil)

	summary, err := service.DailySummary(context.Background(), collectorID, day.Add(16*time.Hour))

	assert.NoError(t, err)
	assert.Equal(t, day, summary.Date)
	assert.True(t, summary.CashTotal.Equal(decimal.NewFromInt(80000)))
	assert.True(t, summary.DigitalTotal.Equal(decimal.NewFromInt(25000)))
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(105000)))
	assert.Equal(t, 9, summary.PaymentCount)
	assert.Equal(t, 14, summary.ActiveClients)

	mockPaymentRepo.AssertExpectations(t)
	mockClientRepo.AssertExpectations(t)
}

func TestWeeklySummary(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}
	mockCashRepo := &mocks.MockCashFlowRepository{}

	service := &SummaryService{
		clientRepo:  mockClientRepo,
		paymentRepo: mockPaymentRepo,
		cashRepo:    mockCashRepo,
	}

	collectorID := uuid.New()

	// A Wednesday; the week runs Monday June 2 to Monday June 9.
	now := time.Date(2025, 6, 4, 11, 30, 0, 0, time.UTC)
	weekStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 7)

	mockCashRepo.On("SumBases", mock.Anything, collectorID, weekStart, weekEnd).
		Return(decimal.NewFromInt(500000), nil)
	mockPaymentRepo.On("SumByMethod", mock.Anything, collectorID, weekStart, weekEnd).
		Return(decimal.NewFromInt(50000), decimal.Zero, 5, nil)
	mockClientRepo.On("SumOriginated", mock.Anything, collectorID, weekStart, weekEnd).
		Return(decimal.NewFromInt(96000), decimal.NewFromInt(4000), nil)
	mockCashRepo.On("SumExpenses", mock.Anything, collectorID, weekStart, weekEnd).
		Return(decimal.NewFromInt(30000), nil)

	summary, err := service.WeeklySummary(context.Background(), collectorID, now)

	assert.NoError(t, err)
	assert.Equal(t, weekStart, summary.WeekStart)
	assert.True(t, summary.Collected.Equal(decimal.NewFromInt(50000)))
	assert.True(t, summary.Net.Equal(decimal.NewFromInt(20000)))
	// 500,000 + 50,000 + 4,000 - 96,000 - 30,000
	assert.True(t, summary.FinalBalance.Equal(decimal.NewFromInt(428000)),
		"Expected 428000, but got %v", summary.FinalBalance)

	mockCashRepo.AssertExpectations(t)
	mockPaymentRepo.AssertExpectations(t)
	mockClientRepo.AssertExpectations(t)
}

func TestAllCollectorsSummary(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}
	mockCashRepo := &mocks.MockCashFlowRepository{}
	mockUserRepo := &mocks.MockUserRepository{}

	service := &SummaryService{
		clientRepo:  mockClientRepo,
		paymentRepo: mockPaymentRepo,
		cashRepo:    mockCashRepo,
		userRepo:    mockUserRepo,
	}

	first := &domain.User{ID: uuid.New(), Username: "cobrador1", DisplayName: "Carlos"}
	second := &domain.User{ID: uuid.New(), Username: "cobrador2", DisplayName: "Diana"}

	now := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)
	day := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	mockUserRepo.On("ListCollectors", mock.Anything).Return([]*domain.User{first, second}, nil)

	mockClientRepo.On("CountActive", mock.Anything, first.ID).Return(10, nil)
	mockPaymentRepo.On("SumByMethod", mock.Anything, first.ID, day, next).
		Return(decimal.NewFromInt(70000), decimal.NewFromInt(10000), 8, nil)
	mockCashRepo.On("SumBases", mock.Anything, first.ID, day, next).
		Return(decimal.NewFromInt(200000), nil)
	mockCashRepo.On("SumExpenses", mock.Anything, first.ID, day, next).
		Return(decimal.NewFromInt(5000), nil)

	mockClientRepo.On("CountActive", mock.Anything, second.ID).Return(0, nil)
	mockPaymentRepo.On("SumByMethod", mock.Anything, second.ID, day, next).
		Return(decimal.Zero, decimal.Zero, 0, nil)
	mockCashRepo.On("SumBases", mock.Anything, second.ID, day, next).
		Return(decimal.Zero, nil)
	mockCashRepo.On("SumExpenses", mock.Anything, second.ID, day, next).
		Return(decimal.Zero, nil)

	summaries, err := service.AllCollectorsSummary(context.Background(), now)

	assert.NoError(t, err)
	assert.Len(t, summaries, 2)

	assert.Equal(t, "cobrador1", summaries[0].Username)
	assert.Equal(t, 10, summaries[0].ActiveClients)
	assert.True(t, summaries[0].CollectedToday.Equal(decimal.NewFromInt(80000)))
	assert.True(t, summaries[0].BaseToday.Equal(decimal.NewFromInt(200000)))

	assert.Equal(t, "cobrador2", summaries[1].Username)
	assert.True(t, summaries[1].CollectedToday.IsZero())

	mockUserRepo.AssertExpectations(t)
}

func TestCollectorActivity(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}
	mockCashRepo := &mocks.MockCashFlowRepository{}

	service := &SummaryService{
		clientRepo:  mockClientRepo,
		paymentRepo: mockPaymentRepo,
		cashRepo:    mockCashRepo,
	}

	collectorID := uuid.New()
	day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	mockClientRepo.On("CountActive", mock.Anything, collectorID).Return(7, nil)
	mockClientRepo.On("SumOriginated", mock.Anything, collectorID, day, next).
		Return(decimal.NewFromInt(48000), decimal.NewFromInt(2000), nil)
	mockPaymentRepo.On("SumByMethod", mock.Anything, collectorID, day, next).
		Return(decimal.NewFromInt(30000), decimal.NewFromInt(12000), 6, nil)
	mockCashRepo.On("SumExpenses", mock.Anything, collectorID, day, next).
		Return(decimal.NewFromInt(8000), nil)

	activity, err := service.CollectorActivity(context.Background(), collectorID, day)

	assert.NoError(t, err)
	assert.Equal(t, day, activity.Date)
	assert.Equal(t, 7, activity.ActiveClients)
	assert.True(t, activity.Lent.Equal(decimal.NewFromInt(48000)))
	assert.True(t, activity.Collected.Equal(decimal.NewFromInt(42000)))
	assert.True(t, activity.Expenses.Equal(decimal.NewFromInt(8000)))
}
