package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studai/studai-backend/internal/config"
)

func TestQuotaService_DailyLimit(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewQuotaService(rdb, config.QuizConfig{DailyQuizLimit: 2})
	ctx := context.Background()

	require.NoError(t, s.ConsumeDailyQuiz(ctx, 1))
	require.NoError(t, s.ConsumeDailyQuiz(ctx, 1))
	assert.ErrorIs(t, s.ConsumeDailyQuiz(ctx, 1), ErrDailyQuizLimit)

	left, err := s.RemainingDailyQuizzes(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, left, "a rejected attempt must not consume quota")

	// Other users are counted separately.
	require.NoError(t, s.ConsumeDailyQuiz(ctx, 2))
}

func TestQuotaService_ReleaseGivesBackUnit(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewQuotaService(rdb, config.QuizConfig{DailyQuizLimit: 1})
	ctx := context.Background()

	require.NoError(t, s.ConsumeDailyQuiz(ctx, 1))
	s.ReleaseDailyQuiz(ctx, 1)

	left, err := s.RemainingDailyQuizzes(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, left)
	assert.NoError(t, s.ConsumeDailyQuiz(ctx, 1))
}

func TestQuotaService_CounterIsPerDay(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewQuotaService(rdb, config.QuizConfig{DailyQuizLimit: 1})
	ctx := context.Background()

	day := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return day }
	require.NoError(t, s.ConsumeDailyQuiz(ctx, 1))
	assert.ErrorIs(t, s.ConsumeDailyQuiz(ctx, 1), ErrDailyQuizLimit)

	s.now = func() time.Time { return day.Add(2 * time.Hour) }
	assert.NoError(t, s.ConsumeDailyQuiz(ctx, 1))
}

func TestQuotaService_Unlimited(t *testing.T) {
	s := NewQuotaService(nil, config.QuizConfig{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.ConsumeDailyQuiz(ctx, 1))
	}
	left, err := s.RemainingDailyQuizzes(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, -1, left)

	ttl, err := s.AcquireSubmitCooldown(ctx, 1, 1)
	assert.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestQuotaService_SubmitCooldown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewQuotaService(rdb, config.QuizConfig{SubmitCooldown: 30 * time.Second})
	ctx := context.Background()

	_, err := s.AcquireSubmitCooldown(ctx, 1, 10)
	require.NoError(t, err)

	ttl, err := s.AcquireSubmitCooldown(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrQuizCooldown)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Second)

	// Another quiz is not blocked.
	_, err = s.AcquireSubmitCooldown(ctx, 1, 11)
	assert.NoError(t, err)

	mr.FastForward(31 * time.Second)
	_, err = s.AcquireSubmitCooldown(ctx, 1, 10)
	assert.NoError(t, err)
}

func TestQuotaService_ReleaseSubmitCooldown(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewQuotaService(rdb, config.QuizConfig{SubmitCooldown: time.Minute})
	ctx := context.Background()

	_, err := s.AcquireSubmitCooldown(ctx, 5, 1)
	require.NoError(t, err)
	s.ReleaseSubmitCooldown(ctx, 5, 1)

	_, err = s.AcquireSubmitCooldown(ctx, 5, 1)
	assert.NoError(t, err)
}
