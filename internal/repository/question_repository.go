package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/quiz"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByQuiz retrieves the stored records of a quiz, ordered by order_num.
// Answer keys are included; callers must sanitize before responding.
func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID int64) ([]quiz.Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, type, prompt, choices, answer_key
		 FROM questions WHERE quiz_id = $1
		 ORDER BY order_num, id`, quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []quiz.Record{}
	for rows.Next() {
		var rec quiz.Record
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Prompt, &rec.Choices, &rec.AnswerKey); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ReplaceAll deletes the questions of a quiz and inserts the given set in one
// transaction.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, quizID int64, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, quizID); err != nil {
		return err
	}
	if err := insertQuestions(ctx, tx, quizID, questions); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE quizzes SET updated_at = CURRENT_TIMESTAMP WHERE id = $1`, quizID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// insertQuestions batches one INSERT per question and fills in the IDs.
func insertQuestions(ctx context.Context, tx pgx.Tx, quizID int64, questions []model.Question) error {
	batch := &pgx.Batch{}
	for i := range questions {
		q := &questions[i]
		q.QuizID = quizID
		q.OrderNum = i + 1
		batch.Queue(
			`INSERT INTO questions (quiz_id, type, prompt, choices, answer_key, order_num)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			quizID, q.Type, q.Prompt, q.Choices, q.AnswerKey, q.OrderNum,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&q.ID)
		})
	}
	return tx.SendBatch(ctx, batch).Close()
}
