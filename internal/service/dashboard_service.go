package service

import (
	"time"

	"go-pos-backend/internal/repository"
)

type DashboardStats struct {
	TotalProducts int64 `json:"total_products"`
	LowStockCount int64 `json:"low_stock_count"`
}

type DashboardService interface {
	GetDashboardStats() (*DashboardStats, error)
	GetStockMovement(startDate, endDate time.Time) ([]repository.DailyMovement, error)
	GetProfitSummary(startDate, endDate time.Time) (*repository.ProfitSummary, error)
}

type dashboardService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	historyRepo  repository.SalesHistoryRepository
}

func NewDashboardService(pRepo repository.ProductRepository, mRepo repository.StockMovementRepository, hRepo repository.SalesHistoryRepository) DashboardService {
	return &dashboardService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		historyRepo:  hRepo,
	}
}

func (s *dashboardService) GetDashboardStats() (*DashboardStats, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	lowStock, err := s.productRepo.FindLowStock()
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalProducts: int64(len(products)),
		LowStockCount: int64(len(lowStock)),
	}, nil
}

func (s *dashboardService) GetStockMovement(startDate, endDate time.Time) ([]repository.DailyMovement, error) {
	return s.movementRepo.GetDailyMovement(startDate, endDate)
}

func (s *dashboardService) GetProfitSummary(startDate, endDate time.Time) (*repository.ProfitSummary, error) {
	return s.historyRepo.GetProfitSummary(startDate, endDate)
}
