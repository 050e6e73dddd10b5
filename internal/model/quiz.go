package model

import (
	"encoding/json"
	"time"

	"github.com/studai/studai-backend/internal/quiz"
)

// Quiz is a set of questions authored by a user.
type Quiz struct {
	ID            int64     `json:"id"`
	OwnerID       int       `json:"owner_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Subject       string    `json:"subject"`
	IsPublic      bool      `json:"is_public"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Question is a stored quiz question. AnswerKey is never serialized.
type Question struct {
	ID        int64             `json:"id"`
	QuizID    int64             `json:"quiz_id"`
	Type      quiz.QuestionType `json:"type"`
	Prompt    string            `json:"prompt"`
	Choices   []string          `json:"choices,omitempty"`
	AnswerKey json.RawMessage   `json:"-"`
	OrderNum  int               `json:"order_num"`
}

// QuestionInput is one authored question. Answer holds a string for
// Multiple Choice, True/False and Fill in the blanks; Pairs is used for Matching.
type QuestionInput struct {
	Type    string      `json:"type" binding:"required,oneof='Multiple Choice' 'Fill in the blanks' 'True/False' 'Matching'"`
	Prompt  string      `json:"prompt" binding:"required,min=1,max=2000"`
	Choices []string    `json:"choices" binding:"omitempty,max=10,dive,min=1,max=500"`
	Answer  string      `json:"answer" binding:"max=500"`
	Pairs   []quiz.Pair `json:"pairs" binding:"omitempty,max=10"`
}

// ToQuestion converts the input into a typed question.
func (in QuestionInput) ToQuestion() quiz.Question {
	h := quiz.Header{Prompt: in.Prompt}
	switch quiz.QuestionType(in.Type) {
	case quiz.TypeMultipleChoice:
		return quiz.MultipleChoice{Header: h, Choices: in.Choices, Answer: in.Answer}
	case quiz.TypeFillInBlank:
		return quiz.FillInBlank{Header: h, Answer: in.Answer}
	case quiz.TypeTrueFalse:
		return quiz.TrueFalse{Header: h, Answer: in.Answer}
	case quiz.TypeMatching:
		return quiz.Matching{Header: h, Pairs: in.Pairs}
	default:
		return quiz.Unsupported{Header: h, Kind: quiz.QuestionType(in.Type)}
	}
}

// CreateQuizRequest is the payload for creating a quiz with its questions.
type CreateQuizRequest struct {
	Title       string          `json:"title" binding:"required,min=3,max=255"`
	Description string          `json:"description" binding:"omitempty,max=2000"`
	Subject     string          `json:"subject" binding:"omitempty,max=100"`
	IsPublic    bool            `json:"is_public"`
	Questions   []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// ReplaceQuestionsRequest is the payload for bulk replacing questions.
type ReplaceQuestionsRequest struct {
	Questions []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// QuizPayload is the cached, answer-free view of a quiz sent to players.
type QuizPayload struct {
	QuizID    int64               `json:"quiz_id"`
	Title     string              `json:"title"`
	Questions []quiz.SafeQuestion `json:"questions"`
}
