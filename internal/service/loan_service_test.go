package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jfcastellanos/prestamos-engine/internal/config"
	"github.com/jfcastellanos/prestamos-engine/internal/domain"
	customError "github.com/jfcastellanos/prestamos-engine/pkg/errors"
	"github.com/jfcastellanos/prestamos-engine/tests/mocks"
)

func TestRegisterClient_WithholdsFee(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	service := &LoanService{
		clientRepo:  mockClientRepo,
		paymentRepo: mockPaymentRepo,
	}

	collectorID := uuid.New()

	// Requested 100,000 -> fee 4,000 -> net principal 96,000.
	mockClientRepo.On("Create", mock.Anything, mock.MatchedBy(func(client *domain.Client) bool {
		return client.Principal.Equal(decimal.NewFromInt(96000)) &&
			client.Fee.Equal(decimal.NewFromInt(4000)) &&
			client.CollectorID == collectorID &&
			client.State == domain.ClientStateActive &&
			client.TermDays == 1
	})).Return(nil)

	client, err := service.RegisterClient(context.Background(), collectorID, &domain.RegisterClientRequest{
		Name:       "Maria Lopez",
		NationalID: "1020304050",
		Phone:      "3001234567",
		Amount:     decimal.NewFromInt(100000),
		TermKind:   domain.TermDaily,
	})

	assert.NoError(t, err)
	assert.True(t, client.Principal.Equal(decimal.NewFromInt(96000)))
	assert.True(t, client.InterestRate.Equal(decimal.NewFromFloat(0.20)))
	assert.True(t, client.MinimumInstallment.Equal(decimal.NewFromInt(4000)))

	mockClientRepo.AssertExpectations(t)
}

func TestRegisterClient_ExplicitRate(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}

	service := &LoanService{clientRepo: mockClientRepo}

	rate := decimal.NewFromFloat(0.15)

	mockClientRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	client, err := service.RegisterClient(context.Background(), uuid.New(), &domain.RegisterClientRequest{
		Name:         "Pedro Gomez",
		NationalID:   "9080706050",
		Phone:        "3109876543",
		Amount:       decimal.NewFromInt(50000),
		TermKind:     domain.TermWeekly,
		InterestRate: &rate,
	})

	assert.NoError(t, err)
	assert.True(t, client.InterestRate.Equal(rate))
	assert.True(t, client.Principal.Equal(decimal.NewFromInt(48000)))
}

func TestRegisterClient_RejectsNonPositiveAmount(t *testing.T) {
	service := &LoanService{}

	_, err := service.RegisterClient(context.Background(), uuid.New(), &domain.RegisterClientRequest{
		Name:   "Sin Plata",
		Amount: decimal.Zero,
	})

	assert.ErrorIs(t, err, customError.ErrInvalidAmount)
}

func TestRegisterClient_RejectsAmountNotAboveFee(t *testing.T) {
	service := &LoanService{}

	// 1,500 carries a 2,000 fee; the net principal would be negative.
	_, err := service.RegisterClient(context.Background(), uuid.New(), &domain.RegisterClientRequest{
		Name:       "Monto Minimo",
		NationalID: "111",
		Phone:      "300",
		Amount:     decimal.NewFromInt(1500),
		TermKind:   domain.TermDaily,
	})

	assert.ErrorIs(t, err, customError.ErrInvalidAmount)
}

func TestUpdateClient_RederivesTerms(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}

	service := &LoanService{clientRepo: mockClientRepo}

	collectorID := uuid.New()
	clientID := uuid.New()

	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{
		ID:                 clientID,
		CollectorID:        collectorID,
		Name:               "Maria Lopez",
		Principal:          decimal.NewFromInt(96000),
		TermKind:           domain.TermDaily,
		InterestRate:       decimal.NewFromFloat(0.20),
		Fee:                decimal.NewFromInt(4000),
		MinimumInstallment: decimal.NewFromInt(4000),
		TermDays:           1,
		State:              domain.ClientStateActive,
	}, nil)

	// New requested amount 150,000 -> fee 6,000 -> net 144,000, weekly term.
	mockClientRepo.On("Update", mock.Anything, mock.MatchedBy(func(client *domain.Client) bool {
		return client.Name == "Maria Lopez de Gomez" &&
			client.Principal.Equal(decimal.NewFromInt(144000)) &&
			client.Fee.Equal(decimal.NewFromInt(6000)) &&
			client.MinimumInstallment.Equal(decimal.NewFromInt(6000)) &&
			client.TermDays == 7 &&
			client.State == domain.ClientStateActive
	})).Return(nil)

	client, err := service.UpdateClient(context.Background(), collectorID, clientID, &domain.UpdateClientRequest{
		Name:       "Maria Lopez de Gomez",
		NationalID: "1020304050",
		Phone:      "3117654321",
		Amount:     decimal.NewFromInt(150000),
		TermKind:   domain.TermWeekly,
	})

	assert.NoError(t, err)
	assert.True(t, client.Principal.Equal(decimal.NewFromInt(144000)))

	mockClientRepo.AssertExpectations(t)
}

func TestUpdateClient_OtherCollectorReportedAsNotFound(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}

	service := &LoanService{clientRepo: mockClientRepo}

	clientID := uuid.New()

	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{
		ID:          clientID,
		CollectorID: uuid.New(),
	}, nil)

	_, err := service.UpdateClient(context.Background(), uuid.New(), clientID, &domain.UpdateClientRequest{
		Name:       "Otro",
		NationalID: "222",
		Phone:      "301",
		Amount:     decimal.NewFromInt(100000),
	})

	assert.ErrorIs(t, err, customError.ErrClientNotFound)
	mockClientRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGetClient_OtherCollectorReportedAsNotFound(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}

	service := &LoanService{clientRepo: mockClientRepo}

	clientID := uuid.New()
	owner := uuid.New()
	intruder := uuid.New()

	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{
		ID:          clientID,
		CollectorID: owner,
	}, nil)

	_, err := service.GetClient(context.Background(), intruder, clientID)

	assert.ErrorIs(t, err, customError.ErrClientNotFound)
	mockClientRepo.AssertExpectations(t)
}

func TestGetClient_AdminSkipsOwnershipCheck(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	service := &LoanService{
		clientRepo:  mockClientRepo,
		paymentRepo: mockPaymentRepo,
	}

	clientID := uuid.New()

	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{
		ID:           clientID,
		CollectorID:  uuid.New(),
		Principal:    decimal.NewFromInt(96000),
		InterestRate: decimal.NewFromFloat(0.20),
		Fee:          decimal.NewFromInt(4000),
	}, nil)
	mockPaymentRepo.On("TotalPaid", mock.Anything, clientID).Return(decimal.NewFromInt(20000), nil)

	detail, err := service.GetClient(context.Background(), uuid.Nil, clientID)

	assert.NoError(t, err)
	assert.True(t, detail.TotalPayable.Equal(decimal.NewFromInt(115200)))
	assert.True(t, detail.Outstanding.Equal(decimal.NewFromInt(95200)))
}

func TestBalance_NoPayments(t *testing.T) {
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	service := &LoanService{paymentRepo: mockPaymentRepo}

	client := &domain.Client{
		ID:           uuid.New(),
		Principal:    decimal.NewFromInt(96000),
		InterestRate: decimal.NewFromFloat(0.20),
		Fee:          decimal.NewFromInt(4000),
	}

	mockPaymentRepo.On("TotalPaid", mock.Anything, client.ID).Return(decimal.Zero, nil)

	balance, err := service.Balance(context.Background(), client)

	assert.NoError(t, err)
	assert.True(t, balance.TotalPayable.Equal(decimal.NewFromInt(115200)))
	assert.True(t, balance.Outstanding.Equal(decimal.NewFromInt(115200)))
	assert.True(t, balance.PercentPaid.IsZero())
}

func TestDeleteClient_RefusedWhileOutstanding(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	service := &LoanService{
		clientRepo:  mockClientRepo,
		paymentRepo: mockPaymentRepo,
	}

	collectorID := uuid.New()
	clientID := uuid.New()

	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{
		ID:           clientID,
		CollectorID:  collectorID,
		Principal:    decimal.NewFromInt(96000),
		InterestRate: decimal.NewFromFloat(0.20),
	}, nil)
	mockPaymentRepo.On("TotalPaid", mock.Anything, clientID).Return(decimal.NewFromInt(20000), nil)

	err := service.DeleteClient(context.Background(), collectorID, clientID)

	assert.ErrorIs(t, err, customError.ErrBalancePending)
	mockClientRepo.AssertNotCalled(t, "UpdateState", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteClient_SettledLoanIsDeactivated(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	service := &LoanService{
		clientRepo:  mockClientRepo,
		paymentRepo: mockPaymentRepo,
	}

	collectorID := uuid.New()
	clientID := uuid.New()

	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{
		ID:           clientID,
		CollectorID:  collectorID,
		Principal:    decimal.NewFromInt(96000),
		InterestRate: decimal.NewFromFloat(0.20),
		State:        domain.ClientStatePaid,
	}, nil)
	mockPaymentRepo.On("TotalPaid", mock.Anything, clientID).Return(decimal.NewFromInt(115200), nil)
	mockClientRepo.On("UpdateState", mock.Anything, clientID, domain.ClientStateInactive).Return(nil)

	err := service.DeleteClient(context.Background(), collectorID, clientID)

	assert.NoError(t, err)
	mockClientRepo.AssertExpectations(t)
}

func TestRegisterPayment_Success(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	service := &LoanService{
		clientRepo:  mockClientRepo,
		paymentRepo: mockPaymentRepo,
	}

	collectorID := uuid.New()
	clientID := uuid.New()

	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{
		ID:          clientID,
		CollectorID: collectorID,
	}, nil)
	mockPaymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(payment *domain.Payment) bool {
		return payment.ClientID == clientID &&
			payment.Amount.Equal(decimal.NewFromInt(20000)) &&
			payment.Method == domain.PaymentMethodCash
	})).Return(nil)

	payment, err := service.RegisterPayment(context.Background(), collectorID, &domain.RegisterPaymentRequest{
		ClientID: clientID,
		Amount:   decimal.NewFromInt(20000),
		Method:   domain.PaymentMethodCash,
	})

	assert.NoError(t, err)
	assert.Equal(t, clientID, payment.ClientID)

	mockClientRepo.AssertExpectations(t)
	mockPaymentRepo.AssertExpectations(t)
}

func TestRegisterPayment_RejectsNonPositiveAmount(t *testing.T) {
	service := &LoanService{}

	_, err := service.RegisterPayment(context.Background(), uuid.New(), &domain.RegisterPaymentRequest{
		ClientID: uuid.New(),
		Amount:   decimal.NewFromInt(-5000),
		Method:   domain.PaymentMethodCash,
	})

	assert.ErrorIs(t, err, customError.ErrInvalidAmount)
}

func TestRegisterPayment_UnknownClient(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}

	service := &LoanService{clientRepo: mockClientRepo}

	clientID := uuid.New()
	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(nil, sql.ErrNoRows)

	_, err := service.RegisterPayment(context.Background(), uuid.New(), &domain.RegisterPaymentRequest{
		ClientID: clientID,
		Amount:   decimal.NewFromInt(20000),
		Method:   domain.PaymentMethodDigital,
	})

	assert.ErrorIs(t, err, customError.ErrClientNotFound)
}

func idempotencyTestService(t *testing.T, clientRepo *mocks.MockClientRepository, paymentRepo *mocks.MockPaymentRepository) (*LoanService, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	return &LoanService{
		clientRepo:  clientRepo,
		paymentRepo: paymentRepo,
		redis:       redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		config: &config.Config{
			Business: config.BusinessConfig{
				DefaultInterestRate: "0.20",
				IdempotencyTTL:      "24h",
			},
		},
	}, mr
}

func TestRegisterPayment_DuplicateIdempotencyKey(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	service, _ := idempotencyTestService(t, mockClientRepo, mockPaymentRepo)

	collectorID := uuid.New()
	clientID := uuid.New()

	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{
		ID:          clientID,
		CollectorID: collectorID,
	}, nil)
	mockPaymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	request := &domain.RegisterPaymentRequest{
		ClientID:       clientID,
		Amount:         decimal.NewFromInt(20000),
		Method:         domain.PaymentMethodCash,
		IdempotencyKey: "abono-123",
	}

	_, err := service.RegisterPayment(context.Background(), collectorID, request)
	assert.NoError(t, err)

	_, err = service.RegisterPayment(context.Background(), collectorID, request)
	assert.ErrorIs(t, err, customError.ErrDuplicatePayment)

	mockPaymentRepo.AssertExpectations(t)
}

func TestRegisterPayment_FailedInsertReleasesIdempotencyKey(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	service, mr := idempotencyTestService(t, mockClientRepo, mockPaymentRepo)

	collectorID := uuid.New()
	clientID := uuid.New()

	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{
		ID:          clientID,
		CollectorID: collectorID,
	}, nil)
	mockPaymentRepo.On("Create", mock.Anything, mock.Anything).
		Return(errors.New("connection reset")).Once()
	mockPaymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	request := &domain.RegisterPaymentRequest{
		ClientID:       clientID,
		Amount:         decimal.NewFromInt(20000),
		Method:         domain.PaymentMethodCash,
		IdempotencyKey: "abono-456",
	}

	_, err := service.RegisterPayment(context.Background(), collectorID, request)
	assert.Error(t, err)
	assert.False(t, mr.Exists("payment:idem:"+collectorID.String()+":abono-456"))

	// A retry of the failed submission must go through, not be rejected as
	// a duplicate.
	_, err = service.RegisterPayment(context.Background(), collectorID, request)
	assert.NoError(t, err)

	mockPaymentRepo.AssertExpectations(t)
}

func TestDeletePayment_Success(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	service := &LoanService{
		clientRepo:  mockClientRepo,
		paymentRepo: mockPaymentRepo,
	}

	collectorID := uuid.New()
	clientID := uuid.New()
	paymentID := uuid.New()

	mockPaymentRepo.On("GetByID", mock.Anything, paymentID).Return(&domain.Payment{
		ID:       paymentID,
		ClientID: clientID,
	}, nil)
	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{
		ID:          clientID,
		CollectorID: collectorID,
	}, nil)
	mockPaymentRepo.On("Delete", mock.Anything, paymentID).Return(nil)

	err := service.DeletePayment(context.Background(), collectorID, paymentID)

	assert.NoError(t, err)
	mockPaymentRepo.AssertExpectations(t)
}

func TestDeletePayment_NotFound(t *testing.T) {
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	service := &LoanService{paymentRepo: mockPaymentRepo}

	paymentID := uuid.New()
	mockPaymentRepo.On("GetByID", mock.Anything, paymentID).Return(nil, sql.ErrNoRows)

	err := service.DeletePayment(context.Background(), uuid.New(), paymentID)

	assert.ErrorIs(t, err, customError.ErrPaymentNotFound)
}

func TestUpdateState_DatabaseErrorIsWrapped(t *testing.T) {
	mockClientRepo := &mocks.MockClientRepository{}

	service := &LoanService{clientRepo: mockClientRepo}

	collectorID := uuid.New()
	clientID := uuid.New()

	mockClientRepo.On("GetByID", mock.Anything, clientID).Return(&domain.Client{
		ID:          clientID,
		CollectorID: collectorID,
	}, nil)
	mockClientRepo.On("UpdateState", mock.Anything, clientID, domain.ClientStateOverdue).
		Return(errors.New("connection reset"))

	err := service.UpdateState(context.Background(), collectorID, clientID, domain.ClientStateOverdue)

	assert.Error(t, err)
	var businessErr *customError.BusinessError
	assert.ErrorAs(t, err, &businessErr)
}
