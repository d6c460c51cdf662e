package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jfcastellanos/prestamos-engine/internal/config"
	"github.com/jfcastellanos/prestamos-engine/internal/domain"
	"github.com/jfcastellanos/prestamos-engine/internal/repository"
	customError "github.com/jfcastellanos/prestamos-engine/pkg/errors"
	"github.com/jfcastellanos/prestamos-engine/pkg/password"
	"github.com/jfcastellanos/prestamos-engine/pkg/token"
)

// UserService manages collectors and administrators: credentials, login
// token issuance and the collector-owned cash records (daily base and
// expenses).
type UserService struct {
	userRepo repository.UserRepository
	cashRepo repository.CashFlowRepository
	config   *config.Config
}

func NewUserService(
	userRepo repository.UserRepository,
	cashRepo repository.CashFlowRepository,
	config *config.Config,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		cashRepo: cashRepo,
		config:   config,
	}
}

// Login validates credentials and issues an access token carrying the
// resolved identity (user id, username, admin flag).
func (s *UserService) Login(ctx context.Context, request *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, request.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.ErrInvalidCredentials
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if !password.Verify(request.Password, user.PasswordHash) {
		return nil, customError.ErrInvalidCredentials
	}

	signed, err := token.Generate(user.ID, user.Username, user.IsAdmin, s.config.Auth.JWTSecret, s.config.GetTokenExpiry())
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{Token: signed, User: user}, nil
}

// CreateUser registers a new user. Usernames are unique; a clash is a
// business error, not a crash.
func (s *UserService) CreateUser(ctx context.Context, request *domain.CreateUserRequest) (*domain.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, request.Username)
	if err == nil && existing != nil {
		return nil, customError.WrapUsernameTaken(request.Username)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	hash, err := password.Hash(request.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     request.Username,
		PasswordHash: hash,
		DisplayName:  request.DisplayName,
		IsAdmin:      request.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return user, nil
}

// GetUser retrieves one user by ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return user, nil
}

// ListUsers returns every user, collectors and admins alike.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return users, nil
}

// DeleteUser removes a collector. Admins cannot delete themselves or
// another admin.
func (s *UserService) DeleteUser(ctx context.Context, actorID uuid.UUID, targetID uuid.UUID) error {
	if actorID == targetID {
		return customError.ErrForbidden
	}

	target, err := s.GetUser(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsAdmin {
		return customError.ErrForbidden
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// ChangePassword updates a user's password. A user changing their own
// password must present the current one; an admin resetting someone else's
// does not.
func (s *UserService) ChangePassword(ctx context.Context, actorID uuid.UUID, actorIsAdmin bool, targetID uuid.UUID, request *domain.ChangePasswordRequest) error {
	if actorID != targetID && !actorIsAdmin {
		return customError.ErrForbidden
	}

	target, err := s.GetUser(ctx, targetID)
	if err != nil {
		return err
	}

	if actorID == targetID && !password.Verify(request.CurrentPassword, target.PasswordHash) {
		return customError.ErrInvalidCredentials
	}

	hash, err := password.Hash(request.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, targetID, hash); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// RegisterCashBase registers today's starting cash float for a collector.
// Registering twice the same day overwrites the amount.
func (s *UserService) RegisterCashBase(ctx context.Context, collectorID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return customError.WrapInvalidAmount(amount.String())
	}

	base := &domain.CashBase{
		ID:          uuid.New(),
		CollectorID: collectorID,
		Date:        dateOnly(time.Now()),
		Amount:      amount,
		CreatedAt:   time.Now(),
	}

	if err := s.cashRepo.UpsertBase(ctx, base); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// RegisterExpense appends an operational expense for today.
func (s *UserService) RegisterExpense(ctx context.Context, collectorID uuid.UUID, amount decimal.Decimal, description string) error {
	if !amount.IsPositive() {
		return customError.WrapInvalidAmount(amount.String())
	}

	expense := &domain.Expense{
		ID:          uuid.New(),
		CollectorID: collectorID,
		Date:        dateOnly(time.Now()),
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.cashRepo.CreateExpense(ctx, expense); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}
