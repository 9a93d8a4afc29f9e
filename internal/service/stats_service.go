package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/cache"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

type StatsService struct {
	repo  repository.StatsRepository
	cache cache.StatsCache
	now   func() time.Time
}

func NewStatsService(repo repository.StatsRepository, statsCache cache.StatsCache) *StatsService {
	if statsCache == nil {
		statsCache = cache.NewNoopStatsCache()
	}
	return &StatsService{repo: repo, cache: statsCache, now: time.Now}
}

func (s *StatsService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	if cached, ok, err := s.cache.GetDashboard(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to read dashboard cache")
	} else if ok {
		return cached, nil
	}

	dashboard, err := s.repo.GetDashboard(ctx, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetDashboard(ctx, dashboard); err != nil {
		log.Warn().Err(err).Msg("Failed to write dashboard cache")
	}
	return dashboard, nil
}

// Statistics aggregates sales and expenses over [From, To).
func (s *StatsService) Statistics(ctx context.Context, filter domain.StatsFilter) (*domain.Statistics, error) {
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, domain.NewValidationError("to", "must be after from")
	}

	if cached, ok, err := s.cache.GetStatistics(ctx, filter); err != nil {
		log.Warn().Err(err).Msg("Failed to read statistics cache")
	} else if ok {
		return cached, nil
	}

	byMonth, err := s.repo.GetMonthlySales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	byCategory, err := s.repo.GetCategorySales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("category sales: %w", err)
	}
	expenses, err := s.repo.GetExpensesByCategory(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}

	stats := &domain.Statistics{
		ByMonth:            byMonth,
		ByCategory:         byCategory,
		ExpensesByCategory: expenses,
	}
	stats.Totalize()

	if err := s.cache.SetStatistics(ctx, filter, stats); err != nil {
		log.Warn().Err(err).Msg("Failed to write statistics cache")
	}
	return stats, nil
}
