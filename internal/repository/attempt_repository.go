package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studai/studai-backend/internal/model"
)

// AttemptRepository handles quiz attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// ListByUser retrieves a user's attempts, newest first. Details are omitted.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]model.QuizAttempt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_attempts WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.quiz_id, q.title, a.user_id, a.score, a.total, a.submitted_at
		 FROM quiz_attempts a JOIN quizzes q ON q.id = a.quiz_id
		 WHERE a.user_id = $1
		 ORDER BY a.submitted_at DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	attempts := []model.QuizAttempt{}
	for rows.Next() {
		var a model.QuizAttempt
		if err := rows.Scan(&a.ID, &a.QuizID, &a.QuizTitle, &a.UserID, &a.Score, &a.Total, &a.SubmittedAt); err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// ListByQuiz retrieves every attempt of a quiz with usernames, for export.
func (r *AttemptRepository) ListByQuiz(ctx context.Context, quizID int64) ([]model.QuizAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.quiz_id, a.user_id, u.username, a.score, a.total, a.details, a.submitted_at
		 FROM quiz_attempts a JOIN users u ON u.id = a.user_id
		 WHERE a.quiz_id = $1
		 ORDER BY a.submitted_at`, quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []model.QuizAttempt{}
	for rows.Next() {
		var a model.QuizAttempt
		var details []byte
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Username, &a.Score, &a.Total, &details, &a.SubmittedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &a.Details)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// BulkInsert writes a batch of attempts with a single UNNEST insert.
// Rows whose id already exists are skipped so requeued items are idempotent.
func (r *AttemptRepository) BulkInsert(ctx context.Context, attempts []model.QuizAttempt) error {
	n := len(attempts)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, n)
	quizIDs := make([]int64, n)
	userIDs := make([]int32, n)
	scores := make([]int32, n)
	totals := make([]int32, n)
	details := make([]string, n)
	submitted := make([]time.Time, n)

	for i, a := range attempts {
		raw, err := json.Marshal(a.Details)
		if err != nil {
			return err
		}
		ids[i] = a.ID
		quizIDs[i] = a.QuizID
		userIDs[i] = int32(a.UserID)
		scores[i] = int32(a.Score)
		totals[i] = int32(a.Total)
		details[i] = string(raw)
		submitted[i] = a.SubmittedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (id, quiz_id, user_id, score, total, details, submitted_at)
		SELECT u.id, u.quiz_id, u.user_id, u.score, u.total, u.details::jsonb, u.submitted_at
		FROM UNNEST(
			$1::uuid[],
			$2::bigint[],
			$3::int[],
			$4::int[],
			$5::int[],
			$6::text[],
			$7::timestamptz[]
		) AS u (id, quiz_id, user_id, score, total, details, submitted_at)
		ON CONFLICT (id) DO NOTHING`,
		ids, quizIDs, userIDs, scores, totals, details, submitted,
	)
	return err
}

// Insert writes one attempt. Used as the fallback when a bulk insert fails.
func (r *AttemptRepository) Insert(ctx context.Context, a model.QuizAttempt) error {
	raw, err := json.Marshal(a.Details)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO quiz_attempts (id, quiz_id, user_id, score, total, details, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.QuizID, a.UserID, a.Score, a.Total, raw, a.SubmittedAt,
	)
	return err
}
