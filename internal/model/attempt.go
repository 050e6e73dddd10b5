package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/studai/studai-backend/internal/quiz"
)

// QuizAttempt is one scored submission of a quiz.
type QuizAttempt struct {
	ID          uuid.UUID     `json:"id"`
	QuizID      int64         `json:"quiz_id"`
	QuizTitle   string        `json:"quiz_title,omitempty"`
	UserID      int           `json:"user_id"`
	Username    string        `json:"username,omitempty"`
	Score       int           `json:"score"`
	Total       int           `json:"total"`
	Details     []quiz.Detail `json:"details,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

// SubmitQuizRequest wraps the raw answers of an attempt. The answers are
// parsed by quiz.ParseSubmission so that a malformed list can be reported
// distinctly from a failed binding.
type SubmitQuizRequest struct {
	Answers json.RawMessage `json:"answers" binding:"required"`
}

// SubmitQuizResponse is returned after scoring.
type SubmitQuizResponse struct {
	AttemptID  uuid.UUID `json:"attempt_id"`
	Percentage float64   `json:"percentage"`
	*quiz.Result
}
