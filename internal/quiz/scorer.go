package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSubmission is returned when a submission does not have the
// expected structure. It signals a caller bug, not a wrong answer.
var ErrInvalidSubmission = errors.New("invalid submission")

// Entry is one submitted answer. QuestionID is a pointer so that a missing
// id can be told apart from id 0.
type Entry struct {
	QuestionID *int64 `json:"questionId"`
	Answer     Answer `json:"answer"`
}

// Submission is the ordered list of answers sent for one attempt.
type Submission []Entry

// Detail is the per-question outcome returned to the client.
type Detail struct {
	QuestionID int64 `json:"questionId"`
	IsCorrect  bool  `json:"isCorrect"`
}

// Result is the scored outcome of one attempt.
type Result struct {
	Score   int      `json:"score"`
	Total   int      `json:"total"`
	Details []Detail `json:"details"`
}

// Percentage returns the score as a percentage of total, 0 for an empty quiz.
func (r *Result) Percentage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total) * 100
}

// ParseSubmission decodes a raw JSON submission. The payload must be an
// array and every entry must carry a questionId.
func ParseSubmission(raw []byte) (Submission, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: answers must be a list", ErrInvalidSubmission)
	}

	var sub Submission
	if err := json.Unmarshal(trimmed, &sub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return sub, nil
}

// Validate checks the structural contract of an already-decoded submission.
func (s Submission) Validate() error {
	for i, e := range s {
		if e.QuestionID == nil {
			return fmt.Errorf("%w: entry %d has no questionId", ErrInvalidSubmission, i)
		}
	}
	return nil
}

// Score grades submission against the trusted questions. Questions are
// visited in their stored order; entries for unknown ids are ignored and the
// first entry wins when an id repeats. Details never carry answer values.
func Score(questions []Question, submission Submission) (*Result, error) {
	if err := submission.Validate(); err != nil {
		return nil, err
	}

	answers := make(map[int64]Answer, len(submission))
	for _, e := range submission {
		if _, dup := answers[*e.QuestionID]; dup {
			continue
		}
		answers[*e.QuestionID] = e.Answer
	}

	res := &Result{
		Total:   len(questions),
		Details: make([]Detail, 0, len(questions)),
	}
	for _, q := range questions {
		id := IDOf(q)
		ans, ok := answers[id]
		correct := ok && IsCorrect(q, ans)
		if correct {
			res.Score++
		}
		res.Details = append(res.Details, Detail{QuestionID: id, IsCorrect: correct})
	}
	return res, nil
}
