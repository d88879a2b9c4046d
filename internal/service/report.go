package service

import (
	"context"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/repository"
)

type reportService struct {
	store *repository.Store
	topN  int
}

func NewReportService(store *repository.Store, policy LendingPolicy) ReportService {
	return &reportService{store: store, topN: policy.withDefaults().ReportTopN}
}

type rankingQuery func(ctx context.Context, limit int) ([]domain.ToolStat, error)

// ranking returns exactly topN entries; ranks with no tool are nil.
func (s *reportService) ranking(ctx context.Context, method string, query rankingQuery) ([]*domain.ToolStat, error) {
	logger.EnterMethod(method, "topN", s.topN)

	stats, err := query(ctx, s.topN)
	if err != nil {
		logger.ExitMethodWithError(method, err)
		return nil, err
	}

	logger.ExitMethod(method, "found", len(stats))
	return domain.PadToolStats(stats, s.topN), nil
}

func (s *reportService) TopDemandedTools(ctx context.Context) ([]*domain.ToolStat, error) {
	return s.ranking(ctx, "reportService.TopDemandedTools", s.store.Requests.ListTopDemanded)
}

func (s *reportService) TopBrokenTools(ctx context.Context) ([]*domain.ToolStat, error) {
	return s.ranking(ctx, "reportService.TopBrokenTools", s.store.Inventory.ListTopBroken)
}

func (s *reportService) TopPricedTools(ctx context.Context) ([]*domain.ToolStat, error) {
	return s.ranking(ctx, "reportService.TopPricedTools", s.store.Tools.ListTopPriced)
}
