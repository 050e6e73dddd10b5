package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/quiz"
)

type attemptFixture struct {
	*quizFixture
	svc      *AttemptService
	attempts *fakeAttemptStore
}

func newAttemptFixture(t *testing.T) *attemptFixture {
	t.Helper()
	cfg := config.QuizConfig{SubmitCooldown: 30 * time.Second, PayloadCacheTTL: time.Hour}
	qf := newQuizFixture(t, cfg)
	attempts := &fakeAttemptStore{}
	return &attemptFixture{
		quizFixture: qf,
		svc:         NewAttemptService(qf.svc, qf.quota, attempts, qf.svc.rdb, nopLogger()),
		attempts:    attempts,
	}
}

func answersFor(t *testing.T, questionIDs []int64, answers ...quiz.Answer) json.RawMessage {
	t.Helper()
	sub := make([]quiz.Entry, 0, len(answers))
	for i, a := range answers {
		id := questionIDs[i]
		sub = append(sub, quiz.Entry{QuestionID: &id, Answer: a})
	}
	raw, err := json.Marshal(sub)
	require.NoError(t, err)
	return raw
}

func questionIDs(f *fakeQuestionStore, quizID int64) []int64 {
	ids := make([]int64, 0)
	for _, r := range f.records[quizID] {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestAttemptService_SubmitScoresAndQueues(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	q, err := f.quizFixture.svc.Create(ctx, 1, sampleQuizRequest(true))
	require.NoError(t, err)
	ids := questionIDs(f.questions, q.ID)

	raw := answersFor(t, ids,
		quiz.TextAnswer("Paris"),
		quiz.TextAnswer("  lima "),
		quiz.TextAnswer("True"),
		quiz.PairsAnswer(quiz.Pair{Left: "Austria", Right: "Vienna"}, quiz.Pair{Left: "Germany", Right: "Berlin"}),
	)

	res, err := f.svc.Submit(ctx, 2, q.ID, raw)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Score)
	assert.Equal(t, 4, res.Total)
	assert.InDelta(t, 75.0, res.Percentage, 0.001)
	require.Len(t, res.Details, 4)
	assert.False(t, res.Details[2].IsCorrect)

	queued, err := f.mr.List(config.WorkerKey.PersistAttemptsQueue)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	var stored model.QuizAttempt
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &stored))
	assert.Equal(t, res.AttemptID, stored.ID)
	assert.Equal(t, 2, stored.UserID)
	assert.Equal(t, 3, stored.Score)
}

func TestAttemptService_SubmitCooldown(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	q, err := f.quizFixture.svc.Create(ctx, 1, sampleQuizRequest(true))
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, 2, q.ID, json.RawMessage(`[]`))
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, 2, q.ID, json.RawMessage(`[]`))
	var ce *CooldownError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, ErrQuizCooldown)
	assert.Greater(t, ce.RetryAfter, time.Duration(0))

	f.mr.FastForward(31 * time.Second)
	_, err = f.svc.Submit(ctx, 2, q.ID, json.RawMessage(`[]`))
	assert.NoError(t, err)
}

func TestAttemptService_InvalidSubmissionDoesNotStartCooldown(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	q, err := f.quizFixture.svc.Create(ctx, 1, sampleQuizRequest(true))
	require.NoError(t, err)

	for _, raw := range []string{`{"questionId":1}`, `[{"answer":"x"}]`, `"text"`} {
		_, err = f.svc.Submit(ctx, 2, q.ID, json.RawMessage(raw))
		assert.ErrorIs(t, err, quiz.ErrInvalidSubmission, raw)
	}

	_, err = f.svc.Submit(ctx, 2, q.ID, json.RawMessage(`[]`))
	assert.NoError(t, err)
}

func TestAttemptService_SubmitHiddenQuiz(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	q, err := f.quizFixture.svc.Create(ctx, 1, sampleQuizRequest(false))
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, 2, q.ID, json.RawMessage(`[]`))
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestAttemptService_NoQuestionsReleasesCooldown(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	q, err := f.quizFixture.svc.Create(ctx, 1, sampleQuizRequest(true))
	require.NoError(t, err)
	f.questions.records[q.ID] = nil

	_, err = f.svc.Submit(ctx, 2, q.ID, json.RawMessage(`[]`))
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.False(t, f.mr.Exists(config.CacheKey.SubmitCooldownKey(2, q.ID)))
}

func TestAttemptService_History(t *testing.T) {
	f := newAttemptFixture(t)
	for i := 0; i < 3; i++ {
		f.attempts.add(model.QuizAttempt{QuizID: 1, UserID: 5, Score: i})
	}
	f.attempts.add(model.QuizAttempt{QuizID: 1, UserID: 6})

	list, p, err := f.svc.History(context.Background(), 5, 1, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 3, p.TotalItems)
	assert.Equal(t, 2, p.TotalPages)
}
