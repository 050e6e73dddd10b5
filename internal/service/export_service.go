package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/quiz"
	"github.com/xuri/excelize/v2"
)

// AttemptLister reads every attempt of a quiz.
type AttemptLister interface {
	ListByQuiz(ctx context.Context, quizID int64) ([]model.QuizAttempt, error)
}

// ExportService builds spreadsheet reports of quiz attempts.
type ExportService struct {
	quizService *QuizService
	attemptRepo AttemptLister
	log         zerolog.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(quizService *QuizService, attemptRepo AttemptLister, log zerolog.Logger) *ExportService {
	return &ExportService{
		quizService: quizService,
		attemptRepo: attemptRepo,
		log:         log.With().Str("component", "export_service").Logger(),
	}
}

// ExportAttempts returns an XLSX workbook of a quiz's attempts and a file name.
func (s *ExportService) ExportAttempts(ctx context.Context, quizID int64) ([]byte, string, error) {
	q, err := s.quizService.GetByID(ctx, quizID)
	if err != nil {
		return nil, "", err
	}

	// A quiz without questions still exports its header row.
	questions, err := s.quizService.Questions(ctx, quizID)
	if err != nil && !errors.Is(err, ErrNoQuestions) {
		return nil, "", err
	}

	attempts, err := s.attemptRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, "", fmt.Errorf("list attempts: %w", err)
	}

	ids := make([]int64, len(questions))
	for i, qq := range questions {
		ids[i] = quiz.IDOf(qq)
	}

	data, err := BuildAttemptsWorkbook(q, ids, attempts)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Int64("quiz_id", quizID).Int("attempts", len(attempts)).Msg("Attempts exported")
	return data, fmt.Sprintf("quiz-%d-attempts.xlsx", quizID), nil
}

const attemptsSheet = "Attempts"

// BuildAttemptsWorkbook writes one row per attempt with a column per question
// marked 1 for correct and 0 otherwise, in questionIDs order.
func BuildAttemptsWorkbook(q *model.Quiz, questionIDs []int64, attempts []model.QuizAttempt) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attemptsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []interface{}{"Attempt ID", "User ID", "Username", "Submitted At", "Score", "Total", "Percentage"}
	for i, id := range questionIDs {
		headers = append(headers, fmt.Sprintf("Q%d (#%d)", i+1, id))
	}
	if err := writeRow(f, 1, headers); err != nil {
		return nil, err
	}

	for r, a := range attempts {
		correct := make(map[int64]bool, len(a.Details))
		for _, d := range a.Details {
			correct[d.QuestionID] = d.IsCorrect
		}

		res := quiz.Result{Score: a.Score, Total: a.Total}
		row := []interface{}{
			a.ID.String(),
			a.UserID,
			a.Username,
			a.SubmittedAt.UTC().Format("2006-01-02 15:04:05"),
			a.Score,
			a.Total,
			res.Percentage(),
		}
		for _, id := range questionIDs {
			if correct[id] {
				row = append(row, 1)
			} else {
				row = append(row, 0)
			}
		}
		if err := writeRow(f, r+2, row); err != nil {
			return nil, err
		}
	}

	if title := q.Title; title != "" {
		_ = f.SetDocProps(&excelize.DocProperties{Title: title, Creator: "StudAI"})
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(attemptsSheet, cell, &values)
}
