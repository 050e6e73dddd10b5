package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/studai/studai-backend/internal/config"
)

// Quota errors.
var (
	ErrDailyQuizLimit = errors.New("daily quiz limit reached")
	ErrQuizCooldown   = errors.New("quiz submitted too recently")
)

// QuotaService enforces per-user daily quiz creation limits and submit cooldowns.
type QuotaService struct {
	rdb *redis.Client
	cfg config.QuizConfig
	now func() time.Time
}

// NewQuotaService creates a new QuotaService.
func NewQuotaService(rdb *redis.Client, cfg config.QuizConfig) *QuotaService {
	return &QuotaService{rdb: rdb, cfg: cfg, now: time.Now}
}

func (s *QuotaService) dailyKey(userID int) string {
	return config.CacheKey.DailyQuizCountKey(userID, s.now().UTC().Format(time.DateOnly))
}

// ConsumeDailyQuiz counts one quiz creation for today. It returns
// ErrDailyQuizLimit, leaving the counter unchanged, when the limit is reached.
// A DailyQuizLimit of zero disables the check.
func (s *QuotaService) ConsumeDailyQuiz(ctx context.Context, userID int) error {
	if s.cfg.DailyQuizLimit <= 0 {
		return nil
	}
	key := s.dailyKey(userID)

	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("incr daily quota: %w", err)
	}
	if n == 1 {
		s.rdb.Expire(ctx, key, 24*time.Hour)
	}
	if n > int64(s.cfg.DailyQuizLimit) {
		s.rdb.Decr(ctx, key)
		return ErrDailyQuizLimit
	}
	return nil
}

// ReleaseDailyQuiz gives back a unit consumed by a creation that later failed.
func (s *QuotaService) ReleaseDailyQuiz(ctx context.Context, userID int) {
	if s.cfg.DailyQuizLimit <= 0 {
		return
	}
	s.rdb.Decr(ctx, s.dailyKey(userID))
}

// RemainingDailyQuizzes returns how many quizzes the user may still create
// today, or -1 when unlimited.
func (s *QuotaService) RemainingDailyQuizzes(ctx context.Context, userID int) (int, error) {
	if s.cfg.DailyQuizLimit <= 0 {
		return -1, nil
	}
	used, err := s.rdb.Get(ctx, s.dailyKey(userID)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	return max(s.cfg.DailyQuizLimit-used, 0), nil
}

// AcquireSubmitCooldown marks a submission of quizID by userID. While the
// cooldown is held it returns ErrQuizCooldown and the time left.
func (s *QuotaService) AcquireSubmitCooldown(ctx context.Context, userID int, quizID int64) (time.Duration, error) {
	if s.cfg.SubmitCooldown <= 0 {
		return 0, nil
	}
	key := config.CacheKey.SubmitCooldownKey(userID, quizID)

	ok, err := s.rdb.SetNX(ctx, key, 1, s.cfg.SubmitCooldown).Result()
	if err != nil {
		return 0, fmt.Errorf("set cooldown: %w", err)
	}
	if ok {
		return 0, nil
	}

	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = s.cfg.SubmitCooldown
	}
	return ttl, ErrQuizCooldown
}

// ReleaseSubmitCooldown clears the cooldown after a submission that could not be scored.
func (s *QuotaService) ReleaseSubmitCooldown(ctx context.Context, userID int, quizID int64) {
	s.rdb.Del(ctx, config.CacheKey.SubmitCooldownKey(userID, quizID))
}
