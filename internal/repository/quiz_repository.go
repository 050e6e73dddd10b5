package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studai/studai-backend/internal/model"
)

// QuizRepository handles quiz data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizSelect = `SELECT q.id, q.owner_id, q.title, q.description, q.subject, q.is_public,
		(SELECT COUNT(*) FROM questions qs WHERE qs.quiz_id = q.id),
		q.created_at, q.updated_at
	 FROM quizzes q`

func scanQuiz(row pgx.Row, q *model.Quiz) error {
	return row.Scan(&q.ID, &q.OwnerID, &q.Title, &q.Description, &q.Subject, &q.IsPublic,
		&q.QuestionCount, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves a quiz by ID.
func (r *QuizRepository) GetByID(ctx context.Context, id int64) (*model.Quiz, error) {
	q := &model.Quiz{}
	if err := scanQuiz(r.pool.QueryRow(ctx, quizSelect+` WHERE q.id = $1`, id), q); err != nil {
		return nil, notFound(err)
	}
	return q, nil
}

// QuizFilter narrows ListPaginated. A nil OwnerID with VisibleTo set lists the
// quizzes that user may play: their own plus public ones.
type QuizFilter struct {
	OwnerID   *int
	VisibleTo *int
	Search    string
}

// ListPaginated retrieves quizzes matching the filter, newest first.
func (r *QuizRepository) ListPaginated(ctx context.Context, f QuizFilter, limit, offset int) ([]model.Quiz, int, error) {
	where := ` WHERE TRUE`
	var args []interface{}
	next := func(v interface{}) string {
		args = append(args, v)
		return `$` + strconv.Itoa(len(args))
	}

	if f.OwnerID != nil {
		where += ` AND q.owner_id = ` + next(*f.OwnerID)
	}
	if f.VisibleTo != nil {
		where += ` AND (q.is_public OR q.owner_id = ` + next(*f.VisibleTo) + `)`
	}
	if f.Search != "" {
		p := next("%" + f.Search + "%")
		where += ` AND (q.title ILIKE ` + p + ` OR q.subject ILIKE ` + p + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quizzes q`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := quizSelect + where + ` ORDER BY q.created_at DESC LIMIT ` + next(limit) + ` OFFSET ` + next(offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	quizzes := []model.Quiz{}
	for rows.Next() {
		var q model.Quiz
		if err := scanQuiz(rows, &q); err != nil {
			return nil, 0, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, total, rows.Err()
}

// CreateWithQuestions inserts a quiz and its questions in one transaction.
// Question IDs and QuizID are filled in on success.
func (r *QuizRepository) CreateWithQuestions(ctx context.Context, q *model.Quiz, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO quizzes (owner_id, title, description, subject, is_public)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		q.OwnerID, q.Title, q.Description, q.Subject, q.IsPublic,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertQuestions(ctx, tx, q.ID, questions); err != nil {
		return err
	}
	q.QuestionCount = len(questions)

	return tx.Commit(ctx)
}

// Delete removes a quiz. Questions and attempts cascade.
func (r *QuizRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
