package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/model"
)

const (
	AttemptBatchSize    = 50
	AttemptBatchTimeout = 2 * time.Second
	AttemptPollTimeout  = 1 * time.Second
	// AttemptFlushTimeout bounds one flush, including the shutdown flush.
	AttemptFlushTimeout = 15 * time.Second
)

// AttemptWriter persists scored attempts.
type AttemptWriter interface {
	BulkInsert(ctx context.Context, attempts []model.QuizAttempt) error
	Insert(ctx context.Context, a model.QuizAttempt) error
}

// AttemptWorker drains the persist queue into PostgreSQL.
type AttemptWorker struct {
	repo AttemptWriter
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewAttemptWorker(repo AttemptWriter, rdb *redis.Client, log zerolog.Logger) *AttemptWorker {
	return &AttemptWorker{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "attempt_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AttemptWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptWorker started")

	batch := make([]model.QuizAttempt, 0, AttemptBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= AttemptBatchSize || time.Since(lastFlush) >= AttemptBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(ctx, batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AttemptPollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
					time.Sleep(AttemptPollTimeout)
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var a model.QuizAttempt
			if err := json.Unmarshal([]byte(item[1]), &a); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, a)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback
// ----------------------------------------------------------------

func (w *AttemptWorker) flushSafe(ctx context.Context, batch []model.QuizAttempt) {
	if len(batch) == 0 {
		return
	}

	// A flush must finish even when shutdown cancels the worker context.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), AttemptFlushTimeout)
	defer cancel()

	err := w.repo.BulkInsert(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Attempts persisted")
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("bulk attempt insert failed, using fallback")

	for _, a := range batch {
		if err := w.repo.Insert(ctx, a); err != nil {
			// Rows rejected by PostgreSQL (quiz or user deleted meanwhile) would fail forever.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				w.log.Error().Err(err).Str("attempt_id", a.ID.String()).Str("pg_code", pgErr.Code).Msg("Attempt rejected, dropping")
				continue
			}
			w.log.Error().Err(err).Str("attempt_id", a.ID.String()).Msg("Insert failed, requeueing")
			w.requeue(ctx, a)
		}
	}
}

func (w *AttemptWorker) requeue(ctx context.Context, a model.QuizAttempt) {
	raw, err := json.Marshal(a)
	if err == nil {
		err = w.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw).Err()
	}
	if err != nil {
		w.log.Error().Err(err).
			Str("attempt_id", a.ID.String()).
			Int64("quiz_id", a.QuizID).
			Int("user_id", a.UserID).
			Int("score", a.Score).
			Int("total", a.Total).
			Msg("Attempt lost: neither persisted nor requeued")
	}
}
