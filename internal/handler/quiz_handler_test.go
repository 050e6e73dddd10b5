package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/middleware"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/quiz"
	"github.com/studai/studai-backend/internal/repository"
	"github.com/studai/studai-backend/internal/service"
	"github.com/studai/studai-backend/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

// stubStore serves two fixed quizzes: 1 is public, 2 is private to user 1.
type stubStore struct {
	records map[int64][]quiz.Record
}

func newStubStore() *stubStore {
	return &stubStore{records: map[int64][]quiz.Record{
		1: {
			{ID: 10, Type: quiz.TypeMultipleChoice, Prompt: "France?", Choices: []string{"Paris", "Lyon"}, AnswerKey: json.RawMessage(`"Paris"`)},
			{ID: 11, Type: quiz.TypeFillInBlank, Prompt: "Peru is ___", AnswerKey: json.RawMessage(`"Lima"`)},
		},
		2: {
			{ID: 20, Type: quiz.TypeTrueFalse, Prompt: "Private", AnswerKey: json.RawMessage(`"True"`)},
		},
	}}
}

func (s *stubStore) GetByID(_ context.Context, id int64) (*model.Quiz, error) {
	switch id {
	case 1:
		return &model.Quiz{ID: 1, OwnerID: 1, Title: "Public", IsPublic: true, QuestionCount: 2}, nil
	case 2:
		return &model.Quiz{ID: 2, OwnerID: 1, Title: "Private"}, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubStore) ListPaginated(context.Context, repository.QuizFilter, int, int) ([]model.Quiz, int, error) {
	return nil, 0, nil
}

func (s *stubStore) CreateWithQuestions(_ context.Context, q *model.Quiz, qs []model.Question) error {
	q.ID = 3
	q.QuestionCount = len(qs)
	return nil
}

func (s *stubStore) Delete(context.Context, int64) error { return nil }

func (s *stubStore) ListByQuiz(_ context.Context, quizID int64) ([]quiz.Record, error) {
	return s.records[quizID], nil
}

func (s *stubStore) ReplaceAll(context.Context, int64, []model.Question) error { return nil }

func (s *stubStore) ListByUser(context.Context, int, int, int) ([]model.QuizAttempt, int, error) {
	return []model.QuizAttempt{}, 0, nil
}

func newQuizTestRouter(t *testing.T, userID int) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zerolog.New(io.Discard)
	cfg := config.QuizConfig{SubmitCooldown: 30 * time.Second, PayloadCacheTTL: time.Hour, MaxQuestionsPerQuiz: 10}
	store := newStubStore()
	quota := service.NewQuotaService(rdb, cfg)
	quizService := service.NewQuizService(store, store, quota, rdb, cfg, log)
	attemptService := service.NewAttemptService(quizService, quota, store, rdb, log)
	h := NewQuizHandler(quizService, attemptService, log)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{UserID: userID, TokenType: service.TokenTypeUser})
		c.Next()
	})
	r.POST("/quizzes", h.CreateQuiz)
	r.GET("/quizzes/:id", h.GetQuiz)
	r.GET("/quizzes/:id/questions", h.GetQuestions)
	r.POST("/quizzes/:id/submit", h.SubmitQuiz)
	return r
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func doJSON(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, *apiError) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env struct {
		Error *apiError `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env.Error
}

func TestSubmitQuiz(t *testing.T) {
	r := newQuizTestRouter(t, 2)

	w, _ := doJSON(r, http.MethodPost, "/quizzes/1/submit",
		`{"answers":[{"questionId":10,"answer":"Paris"},{"questionId":11,"answer":"LIMA "}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data model.SubmitQuizResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Data.Result)
	assert.Equal(t, 2, body.Data.Score)
	assert.Equal(t, 2, body.Data.Total)
	assert.InDelta(t, 100.0, body.Data.Percentage, 0.001)
	assert.NotContains(t, w.Body.String(), "Lima")

	w, apiErr := doJSON(r, http.MethodPost, "/quizzes/1/submit", `{"answers":[]}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotNil(t, apiErr)
	assert.Equal(t, "QUIZ_COOLDOWN", apiErr.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestSubmitQuiz_Errors(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"answers not a list", "/quizzes/1/submit", `{"answers":{"10":"Paris"}}`, http.StatusBadRequest, "INVALID_SUBMISSION"},
		{"entry without id", "/quizzes/1/submit", `{"answers":[{"answer":"Paris"}]}`, http.StatusBadRequest, "INVALID_SUBMISSION"},
		{"answers missing", "/quizzes/1/submit", `{}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad id", "/quizzes/abc/submit", `{"answers":[]}`, http.StatusBadRequest, "INVALID_ID"},
		{"private quiz", "/quizzes/2/submit", `{"answers":[]}`, http.StatusNotFound, "QUIZ_NOT_FOUND"},
		{"unknown quiz", "/quizzes/99/submit", `{"answers":[]}`, http.StatusNotFound, "QUIZ_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newQuizTestRouter(t, 2)
			w, apiErr := doJSON(r, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code)
			require.NotNil(t, apiErr)
			assert.Equal(t, tc.code, apiErr.Code)
		})
	}
}

func TestGetQuestions_HidesAnswers(t *testing.T) {
	r := newQuizTestRouter(t, 2)

	w, _ := doJSON(r, http.MethodGet, "/quizzes/1/questions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Lima")
	assert.NotContains(t, w.Body.String(), "answer")

	w, _ = doJSON(r, http.MethodGet, "/quizzes/2/questions", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The owner sees their private quiz.
	owner := newQuizTestRouter(t, 1)
	w, _ = doJSON(owner, http.MethodGet, "/quizzes/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateQuiz_InvalidQuestion(t *testing.T) {
	r := newQuizTestRouter(t, 1)

	w, apiErr := doJSON(r, http.MethodPost, "/quizzes", `{
		"title": "Bad quiz",
		"questions": [
			{"type": "True/False", "prompt": "ok", "answer": "True"},
			{"type": "Multiple Choice", "prompt": "p", "choices": ["a", "b"], "answer": "c"}
		]
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, apiErr)
	assert.Equal(t, "INVALID_QUESTION", apiErr.Code)
	assert.Contains(t, apiErr.Fields, "questions[1].answer")

	w, apiErr = doJSON(r, http.MethodPost, "/quizzes", `{"title": "No type", "questions": [{"prompt": "p"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, apiErr)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Fields, "questions[0].type")

	w, _ = doJSON(r, http.MethodPost, "/quizzes", `{
		"title": "Good quiz",
		"questions": [{"type": "Fill in the blanks", "prompt": "2+2 = ___", "answer": "4"}]
	}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrBattleFull, http.StatusConflict},
		{service.ErrNotBattleHost, http.StatusForbidden},
		{service.ErrDailyQuizLimit, http.StatusTooManyRequests},
		{&service.CooldownError{RetryAfter: time.Second}, http.StatusTooManyRequests},
		{errors.Join(errors.New("ctx"), repository.ErrDuplicateEmail), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}
}
