package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studai/studai-backend/internal/model"
)

// StatsRepository handles admin dashboard data access.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *StatsRepository) GetSummaryCounts(ctx context.Context) (*model.AdminStats, error) {
	s := &model.AdminStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM quizzes),
			(SELECT COUNT(*) FROM quiz_attempts WHERE submitted_at >= date_trunc('day', NOW()))`,
	).Scan(&s.Users, &s.Quizzes, &s.AttemptsToday)
	if err != nil {
		return nil, err
	}
	return s, nil
}
