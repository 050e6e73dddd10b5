package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/quiz"
	"github.com/studai/studai-backend/internal/repository"
	"github.com/studai/studai-backend/internal/response"
)

// Quiz errors.
var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrNotQuizOwner     = errors.New("not the owner of this quiz")
	ErrNoQuestions      = errors.New("quiz has no questions")
	ErrTooManyQuestions = errors.New("too many questions")
)

// QuestionError reports which authored question failed validation.
type QuestionError struct {
	Index int
	Err   *quiz.ValidationError
}

func (e *QuestionError) Error() string {
	return fmt.Sprintf("questions[%d]: %s", e.Index, e.Err.Message)
}

func (e *QuestionError) Unwrap() error { return e.Err }

// Fields returns the error keyed by its path in the request body.
func (e *QuestionError) Fields() map[string]string {
	return map[string]string{
		fmt.Sprintf("questions[%d].%s", e.Index, e.Err.Field): e.Err.Message,
	}
}

// QuizStore is the quiz persistence used by QuizService.
type QuizStore interface {
	GetByID(ctx context.Context, id int64) (*model.Quiz, error)
	ListPaginated(ctx context.Context, f repository.QuizFilter, limit, offset int) ([]model.Quiz, int, error)
	CreateWithQuestions(ctx context.Context, q *model.Quiz, questions []model.Question) error
	Delete(ctx context.Context, id int64) error
}

// QuestionStore is the question persistence used by QuizService.
type QuestionStore interface {
	ListByQuiz(ctx context.Context, quizID int64) ([]quiz.Record, error)
	ReplaceAll(ctx context.Context, quizID int64, questions []model.Question) error
}

// QuizService handles quiz authoring, access and the Redis caches of
// sanitized payloads and answer keys.
type QuizService struct {
	quizRepo     QuizStore
	questionRepo QuestionStore
	quota        *QuotaService
	rdb          *redis.Client
	cfg          config.QuizConfig
	sanitizer    *quiz.Sanitizer
	log          zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	quizRepo QuizStore,
	questionRepo QuestionStore,
	quota *QuotaService,
	rdb *redis.Client,
	cfg config.QuizConfig,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		quota:        quota,
		rdb:          rdb,
		cfg:          cfg,
		sanitizer:    quiz.NewSanitizer(nil),
		log:          log.With().Str("component", "quiz_service").Logger(),
	}
}

// Create validates and stores a quiz with its questions. The creation counts
// against the owner's daily quota only once validation has passed.
func (s *QuizService) Create(ctx context.Context, ownerID int, req model.CreateQuizRequest) (*model.Quiz, error) {
	questions, err := s.buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	if err := s.quota.ConsumeDailyQuiz(ctx, ownerID); err != nil {
		return nil, err
	}

	q := &model.Quiz{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		IsPublic:    req.IsPublic,
	}
	if err := s.quizRepo.CreateWithQuestions(ctx, q, questions); err != nil {
		s.quota.ReleaseDailyQuiz(ctx, ownerID)
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	s.log.Info().Int64("quiz_id", q.ID).Int("owner_id", ownerID).Int("questions", len(questions)).Msg("Quiz created")
	return q, nil
}

func (s *QuizService) buildQuestions(inputs []model.QuestionInput) ([]model.Question, error) {
	if len(inputs) == 0 {
		return nil, ErrNoQuestions
	}
	if s.cfg.MaxQuestionsPerQuiz > 0 && len(inputs) > s.cfg.MaxQuestionsPerQuiz {
		return nil, ErrTooManyQuestions
	}

	out := make([]model.Question, 0, len(inputs))
	for i, in := range inputs {
		q := in.ToQuestion()
		if err := quiz.Validate(q); err != nil {
			var ve *quiz.ValidationError
			if errors.As(err, &ve) {
				return nil, &QuestionError{Index: i, Err: ve}
			}
			return nil, err
		}
		rec, err := quiz.Encode(q)
		if err != nil {
			return nil, fmt.Errorf("encode question %d: %w", i, err)
		}
		out = append(out, model.Question{
			Type:      rec.Type,
			Prompt:    rec.Prompt,
			Choices:   rec.Choices,
			AnswerKey: rec.AnswerKey,
		})
	}
	return out, nil
}

// GetByID retrieves a quiz without access checks.
func (s *QuizService) GetByID(ctx context.Context, id int64) (*model.Quiz, error) {
	q, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return q, nil
}

// GetVisible retrieves a quiz the user may play. Private quizzes of other
// users are reported as not found.
func (s *QuizService) GetVisible(ctx context.Context, id int64, userID int) (*model.Quiz, error) {
	q, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.IsPublic && q.OwnerID != userID {
		return nil, ErrQuizNotFound
	}
	return q, nil
}

// ListVisible lists the user's quizzes plus public ones. With mine set only
// the user's own quizzes are listed.
func (s *QuizService) ListVisible(ctx context.Context, userID int, mine bool, search string, page, perPage int) ([]model.Quiz, *response.Pagination, error) {
	f := repository.QuizFilter{Search: search}
	if mine {
		f.OwnerID = &userID
	} else {
		f.VisibleTo = &userID
	}
	return s.list(ctx, f, page, perPage)
}

// ListAll lists every quiz. Admin only.
func (s *QuizService) ListAll(ctx context.Context, search string, page, perPage int) ([]model.Quiz, *response.Pagination, error) {
	return s.list(ctx, repository.QuizFilter{Search: search}, page, perPage)
}

func (s *QuizService) list(ctx context.Context, f repository.QuizFilter, page, perPage int) ([]model.Quiz, *response.Pagination, error) {
	page, perPage, limit, offset := pageBounds(page, perPage)
	quizzes, total, err := s.quizRepo.ListPaginated(ctx, f, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return quizzes, pagination(page, perPage, total), nil
}

// ReplaceQuestions swaps the question set of a quiz owned by ownerID.
func (s *QuizService) ReplaceQuestions(ctx context.Context, quizID int64, ownerID int, req model.ReplaceQuestionsRequest) error {
	q, err := s.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if q.OwnerID != ownerID {
		return ErrNotQuizOwner
	}

	questions, err := s.buildQuestions(req.Questions)
	if err != nil {
		return err
	}
	if err := s.questionRepo.ReplaceAll(ctx, quizID, questions); err != nil {
		return fmt.Errorf("replace questions: %w", err)
	}

	s.invalidate(ctx, quizID)
	s.log.Info().Int64("quiz_id", quizID).Int("questions", len(questions)).Msg("Quiz questions replaced")
	return nil
}

// Delete removes a quiz. Unless force is set only the owner may delete it.
func (s *QuizService) Delete(ctx context.Context, quizID int64, userID int, force bool) error {
	q, err := s.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if !force && q.OwnerID != userID {
		return ErrNotQuizOwner
	}
	if err := s.quizRepo.Delete(ctx, quizID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuizNotFound
		}
		return err
	}

	s.invalidate(ctx, quizID)
	s.log.Info().Int64("quiz_id", quizID).Int("by_user", userID).Bool("force", force).Msg("Quiz deleted")
	return nil
}

func (s *QuizService) invalidate(ctx context.Context, quizID int64) {
	err := s.rdb.Del(ctx,
		config.CacheKey.QuizPayloadKey(quizID),
		config.CacheKey.QuizAnswerKey(quizID),
	).Err()
	if err != nil {
		s.log.Warn().Err(err).Int64("quiz_id", quizID).Msg("Failed to invalidate quiz cache")
	}
}

// Payload returns the sanitized questions of a quiz. The payload is cached
// once; Matching items are reshuffled on every call.
func (s *QuizService) Payload(ctx context.Context, q *model.Quiz) (*model.QuizPayload, error) {
	key := config.CacheKey.QuizPayloadKey(q.ID)

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var payload model.QuizPayload
		if err := json.Unmarshal(data, &payload); err == nil {
			payload.Questions = s.sanitizer.Reshuffle(payload.Questions)
			return &payload, nil
		}
		s.log.Warn().Int64("quiz_id", q.ID).Msg("Corrupt payload cache, rebuilding")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Int64("quiz_id", q.ID).Msg("Payload cache read failed")
	}

	questions, err := s.Questions(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	payload := &model.QuizPayload{
		QuizID:    q.ID,
		Title:     q.Title,
		Questions: s.sanitizer.Sanitize(questions),
	}
	if raw, err := json.Marshal(payload); err == nil {
		if err := s.rdb.Set(ctx, key, raw, s.cfg.PayloadCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Int64("quiz_id", q.ID).Msg("Payload cache write failed")
		}
	}
	return payload, nil
}

// Questions returns the server-held questions of a quiz, answer keys
// included. Reads go to Redis first and fall back to PostgreSQL, refilling
// the cache. Records that cannot be decoded are kept and logged; the matcher
// treats them as never correct.
func (s *QuizService) Questions(ctx context.Context, quizID int64) ([]quiz.Question, error) {
	records, err := s.answerKey(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoQuestions
	}

	questions := make([]quiz.Question, 0, len(records))
	for _, rec := range records {
		q, err := quiz.Decode(rec)
		if err != nil {
			s.log.Warn().Err(err).
				Int64("quiz_id", quizID).
				Int64("question_id", rec.ID).
				Str("type", string(rec.Type)).
				Msg("Question data problem, scored as incorrect")
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (s *QuizService) answerKey(ctx context.Context, quizID int64) ([]quiz.Record, error) {
	key := config.CacheKey.QuizAnswerKey(quizID)

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var records []quiz.Record
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Int64("quiz_id", quizID).Msg("Answer key cache read failed, using database")
	}

	records, err := s.questionRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	if raw, err := json.Marshal(records); err == nil {
		if err := s.rdb.Set(ctx, key, raw, s.cfg.PayloadCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Int64("quiz_id", quizID).Msg("Answer key cache write failed")
		}
	}
	return records, nil
}
