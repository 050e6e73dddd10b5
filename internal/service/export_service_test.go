package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/quiz"
	"github.com/xuri/excelize/v2"
)

func readSheet(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(attemptsSheet)
	require.NoError(t, err)
	return rows
}

func TestBuildAttemptsWorkbook(t *testing.T) {
	id := uuid.MustParse("5b0e7d1c-0000-4000-8000-000000000001")
	attempts := []model.QuizAttempt{{
		ID:          id,
		UserID:      7,
		Username:    "alice",
		Score:       3,
		Total:       4,
		SubmittedAt: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
		Details: []quiz.Detail{
			{QuestionID: 10, IsCorrect: true},
			{QuestionID: 11, IsCorrect: false},
			{QuestionID: 12, IsCorrect: true},
			{QuestionID: 13, IsCorrect: true},
		},
	}}

	data, err := BuildAttemptsWorkbook(&model.Quiz{ID: 1, Title: "Capitals"}, []int64{10, 11, 12, 13}, attempts)
	require.NoError(t, err)

	rows := readSheet(t, data)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"Attempt ID", "User ID", "Username", "Submitted At", "Score", "Total", "Percentage",
		"Q1 (#10)", "Q2 (#11)", "Q3 (#12)", "Q4 (#13)",
	}, rows[0])
	assert.Equal(t, []string{
		id.String(), "7", "alice", "2026-05-01 09:30:00", "3", "4", "75",
		"1", "0", "1", "1",
	}, rows[1])
}

func TestBuildAttemptsWorkbook_NoAttempts(t *testing.T) {
	data, err := BuildAttemptsWorkbook(&model.Quiz{ID: 1}, nil, nil)
	require.NoError(t, err)

	rows := readSheet(t, data)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 7)
}

func TestExportService_ExportAttempts(t *testing.T) {
	f := newQuizFixture(t, config.QuizConfig{PayloadCacheTTL: time.Hour})
	ctx := context.Background()

	q, err := f.svc.Create(ctx, 1, sampleQuizRequest(true))
	require.NoError(t, err)
	ids := questionIDs(f.questions, q.ID)

	attempts := &fakeAttemptStore{}
	attempts.add(model.QuizAttempt{QuizID: q.ID, UserID: 2, Username: "bob", Score: 1, Total: 4,
		Details: []quiz.Detail{{QuestionID: ids[0], IsCorrect: true}}})
	attempts.add(model.QuizAttempt{QuizID: q.ID + 1, UserID: 3})

	svc := NewExportService(f.svc, attempts, nopLogger())
	data, name, err := svc.ExportAttempts(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "quiz-1-attempts.xlsx", name)

	rows := readSheet(t, data)
	require.Len(t, rows, 2)
	assert.Equal(t, "bob", rows[1][2])
	assert.Equal(t, "1", rows[1][7])

	_, _, err = svc.ExportAttempts(ctx, 404)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}
