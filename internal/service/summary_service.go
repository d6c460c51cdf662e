package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jfcastellanos/prestamos-engine/internal/domain"
	"github.com/jfcastellanos/prestamos-engine/internal/repository"
	customError "github.com/jfcastellanos/prestamos-engine/pkg/errors"
	"github.com/jfcastellanos/prestamos-engine/pkg/utils"
)

// SummaryService aggregates collections, loans, cash bases and expenses
// into the daily and weekly figures the collector and admin dashboards
// consume. Every call recomputes from the rows; nothing is cached, so the
// figures are always current.
type SummaryService struct {
	clientRepo  repository.ClientRepository
	paymentRepo repository.PaymentRepository
	cashRepo    repository.CashFlowRepository
	userRepo    repository.UserRepository
}

func NewSummaryService(
	clientRepo repository.ClientRepository,
	paymentRepo repository.PaymentRepository,
	cashRepo repository.CashFlowRepository,
	userRepo repository.UserRepository,
) *SummaryService {
	return &SummaryService{
		clientRepo:  clientRepo,
		paymentRepo: paymentRepo,
		cashRepo:    cashRepo,
		userRepo:    userRepo,
	}
}

// DailySummary sums one collector's payments for a single day, split by
// method. The active client count is the current total, not the day's.
func (s *SummaryService) DailySummary(ctx context.Context, collectorID uuid.UUID, date time.Time) (*domain.DailySummary, error) {
	day := dateOnly(date)
	next := day.AddDate(0, 0, 1)

	cash, digital, count, err := s.paymentRepo.SumByMethod(ctx, collectorID, day, next)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	activeClients, err := s.clientRepo.CountActive(ctx, collectorID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.DailySummary{
		Date:          day,
		CashTotal:     cash,
		DigitalTotal:  digital,
		Total:         cash.Add(digital),
		PaymentCount:  count,
		ActiveClients: activeClients,
	}, nil
}

// WeeklySummary rolls up one collector's week (Monday onward). It exposes
// both bottom lines: Net (collected minus expenses) and FinalBalance, which
// adds the base and the withheld fees back to reconstruct the gross cash
// position.
func (s *SummaryService) WeeklySummary(ctx context.Context, collectorID uuid.UUID, now time.Time) (*domain.WeeklySummary, error) {
	weekStart := utils.StartOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	base, err := s.cashRepo.SumBases(ctx, collectorID, weekStart, weekEnd)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	cash, digital, _, err := s.paymentRepo.SumByMethod(ctx, collectorID, weekStart, weekEnd)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	collected := cash.Add(digital)

	lent, fees, err := s.clientRepo.SumOriginated(ctx, collectorID, weekStart, weekEnd)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	expenses, err := s.cashRepo.SumExpenses(ctx, collectorID, weekStart, weekEnd)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.WeeklySummary{
		WeekStart:    weekStart,
		Base:         base,
		Collected:    collected,
		Cash:         cash,
		Digital:      digital,
		Lent:         lent,
		Fees:         fees,
		Expenses:     expenses,
		Net:          collected.Sub(expenses),
		FinalBalance: base.Add(collected).Add(fees).Sub(lent).Sub(expenses),
	}, nil
}

// AllCollectorsSummary produces the admin dashboard: today's figures for
// every non-admin user. Each collector costs a fixed handful of aggregate
// queries, never one query per loan.
func (s *SummaryService) AllCollectorsSummary(ctx context.Context, now time.Time) ([]*domain.CollectorSummary, error) {
	collectors, err := s.userRepo.ListCollectors(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	day := dateOnly(now)
	next := day.AddDate(0, 0, 1)

	summaries := make([]*domain.CollectorSummary, 0, len(collectors))
	for _, collector := range collectors {
		activeClients, err := s.clientRepo.CountActive(ctx, collector.ID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		cash, digital, _, err := s.paymentRepo.SumByMethod(ctx, collector.ID, day, next)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		base, err := s.cashRepo.SumBases(ctx, collector.ID, day, next)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		expenses, err := s.cashRepo.SumExpenses(ctx, collector.ID, day, next)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		summaries = append(summaries, &domain.CollectorSummary{
			CollectorID:    collector.ID,
			Username:       collector.Username,
			DisplayName:    collector.DisplayName,
			ActiveClients:  activeClients,
			CollectedToday: cash.Add(digital),
			BaseToday:      base,
			ExpensesToday:  expenses,
		})
	}

	return summaries, nil
}

// CollectorActivity returns one collector's figures for a single day.
func (s *SummaryService) CollectorActivity(ctx context.Context, collectorID uuid.UUID, date time.Time) (*domain.CollectorActivity, error) {
	day := dateOnly(date)
	next := day.AddDate(0, 0, 1)

	activeClients, err := s.clientRepo.CountActive(ctx, collectorID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	lent, _, err := s.clientRepo.SumOriginated(ctx, collectorID, day, next)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	cash, digital, _, err := s.paymentRepo.SumByMethod(ctx, collectorID, day, next)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	expenses, err := s.cashRepo.SumExpenses(ctx, collectorID, day, next)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.CollectorActivity{
		Date:          day,
		ActiveClients: activeClients,
		Lent:          lent,
		Collected:     cash.Add(digital),
		Expenses:      expenses,
	}, nil
}

// CollectorHistory returns per-day activity for the last n days, today
// first.
func (s *SummaryService) CollectorHistory(ctx context.Context, collectorID uuid.UUID, days int) ([]*domain.CollectorActivity, error) {
	today := dateOnly(time.Now())

	history := make([]*domain.CollectorActivity, 0, days)
	for i := 0; i < days; i++ {
		activity, err := s.CollectorActivity(ctx, collectorID, today.AddDate(0, 0, -i))
		if err != nil {
			return nil, err
		}
		history = append(history, activity)
	}

	return history, nil
}
