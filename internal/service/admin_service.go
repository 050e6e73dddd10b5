package service

import (
	"context"

	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/repository"
)

// AdminService handles admin dashboard logic.
type AdminService struct {
	statsRepo *repository.StatsRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(statsRepo *repository.StatsRepository) *AdminService {
	return &AdminService{statsRepo: statsRepo}
}

// GetStats returns the summary counts shown on the dashboard.
func (s *AdminService) GetStats(ctx context.Context) (*model.AdminStats, error) {
	return s.statsRepo.GetSummaryCounts(ctx)
}
