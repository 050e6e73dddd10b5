package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/quiz"
	"github.com/studai/studai-backend/internal/response"
)

// AttemptStore is the attempt persistence read by AttemptService.
// Writes go through the persist queue and worker.AttemptWorker.
type AttemptStore interface {
	ListByUser(ctx context.Context, userID, limit, offset int) ([]model.QuizAttempt, int, error)
}

// CooldownError carries the time left on a submit cooldown.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrQuizCooldown, e.RetryAfter.Round(time.Second))
}

func (e *CooldownError) Unwrap() error { return ErrQuizCooldown }

// AttemptService scores quiz submissions and queues them for persistence.
type AttemptService struct {
	quizService *QuizService
	quota       *QuotaService
	attemptRepo AttemptStore
	rdb         *redis.Client
	log         zerolog.Logger
	now         func() time.Time
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	quizService *QuizService,
	quota *QuotaService,
	attemptRepo AttemptStore,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		quizService: quizService,
		quota:       quota,
		attemptRepo: attemptRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "attempt_service").Logger(),
		now:         time.Now,
	}
}

// Submit scores raw answers for a quiz the user can see.
//
// Errors: ErrQuizNotFound, quiz.ErrInvalidSubmission (wrapped),
// *CooldownError, ErrNoQuestions.
func (s *AttemptService) Submit(ctx context.Context, userID int, quizID int64, raw json.RawMessage) (*model.SubmitQuizResponse, error) {
	if _, err := s.quizService.GetVisible(ctx, quizID, userID); err != nil {
		return nil, err
	}

	submission, err := quiz.ParseSubmission(raw)
	if err != nil {
		return nil, err
	}

	if wait, err := s.quota.AcquireSubmitCooldown(ctx, userID, quizID); err != nil {
		if wait > 0 {
			return nil, &CooldownError{RetryAfter: wait}
		}
		return nil, err
	}

	questions, err := s.quizService.Questions(ctx, quizID)
	if err != nil {
		s.quota.ReleaseSubmitCooldown(ctx, userID, quizID)
		return nil, err
	}

	result, err := quiz.Score(questions, submission)
	if err != nil {
		s.quota.ReleaseSubmitCooldown(ctx, userID, quizID)
		return nil, err
	}

	attempt := model.QuizAttempt{
		ID:          uuid.New(),
		QuizID:      quizID,
		UserID:      userID,
		Score:       result.Score,
		Total:       result.Total,
		Details:     result.Details,
		SubmittedAt: s.now().UTC(),
	}
	s.enqueue(ctx, attempt)

	s.log.Info().
		Int("user_id", userID).
		Int64("quiz_id", quizID).
		Int("score", result.Score).
		Int("total", result.Total).
		Msg("Quiz submitted and scored")

	return &model.SubmitQuizResponse{
		AttemptID:  attempt.ID,
		Percentage: result.Percentage(),
		Result:     result,
	}, nil
}

// enqueue pushes an attempt to the persist queue. A failed push is logged;
// the player still gets their score.
func (s *AttemptService) enqueue(ctx context.Context, a model.QuizAttempt) {
	payload, err := json.Marshal(a)
	if err != nil {
		s.log.Error().Err(err).Msg("Marshal attempt failed")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("attempt_id", a.ID.String()).Msg("Failed to queue attempt")
	}
}

// History lists the user's attempts, newest first.
func (s *AttemptService) History(ctx context.Context, userID, page, perPage int) ([]model.QuizAttempt, *response.Pagination, error) {
	page, perPage, limit, offset := pageBounds(page, perPage)
	attempts, total, err := s.attemptRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return attempts, pagination(page, perPage, total), nil
}
