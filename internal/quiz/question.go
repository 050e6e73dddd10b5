package quiz

import (
	"encoding/json"
	"fmt"
)

// QuestionType is the discriminant stored alongside every question.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "Multiple Choice"
	TypeFillInBlank    QuestionType = "Fill in the blanks"
	TypeTrueFalse      QuestionType = "True/False"
	TypeMatching       QuestionType = "Matching"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeFillInBlank, TypeTrueFalse, TypeMatching:
		return true
	}
	return false
}

// True/False answer values.
const (
	AnswerTrue  = "True"
	AnswerFalse = "False"
)

// Question is a server-held question including its answer key.
// The concrete types are MultipleChoice, FillInBlank, TrueFalse, Matching
// and Unsupported.
type Question interface {
	Type() QuestionType
	header() Header
}

// Header holds the fields shared by every question variant.
type Header struct {
	ID     int64  `json:"id"`
	Prompt string `json:"prompt"`
}

func (h Header) header() Header { return h }

// MultipleChoice has a fixed list of choices and one correct choice.
type MultipleChoice struct {
	Header
	Choices []string
	Answer  string
}

func (MultipleChoice) Type() QuestionType { return TypeMultipleChoice }

// FillInBlank is answered with free text compared case-insensitively.
type FillInBlank struct {
	Header
	Answer string
}

func (FillInBlank) Type() QuestionType { return TypeFillInBlank }

// TrueFalse is answered with "True" or "False".
type TrueFalse struct {
	Header
	Answer string
}

func (TrueFalse) Type() QuestionType { return TypeTrueFalse }

// Matching asks the user to pair every left label with a right label.
type Matching struct {
	Header
	Pairs []Pair
}

func (Matching) Type() QuestionType { return TypeMatching }

// Unsupported carries a stored question whose type is not recognised.
// It is never correct and sanitizes to id, type and prompt only.
type Unsupported struct {
	Header
	Kind QuestionType
}

func (u Unsupported) Type() QuestionType { return u.Kind }

// Pair is one left/right association of a Matching question.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// IDOf returns the identifier of q.
func IDOf(q Question) int64 { return q.header().ID }

// PromptOf returns the prompt text of q.
func PromptOf(q Question) string { return q.header().Prompt }

// Record is the storage form of a question: the answer key is kept as raw
// JSON (a string for most types, a list of pairs for Matching).
type Record struct {
	ID        int64           `json:"id"`
	Type      QuestionType    `json:"type"`
	Prompt    string          `json:"prompt"`
	Choices   []string        `json:"choices,omitempty"`
	AnswerKey json.RawMessage `json:"answer_key"`
}

// Decode converts a stored record into its typed question. Records with an
// unknown type decode to Unsupported. A missing or undecodable answer key
// yields a question with an empty key together with a non-nil error, so the
// caller may log the data problem and still use the question.
func Decode(r Record) (Question, error) {
	h := Header{ID: r.ID, Prompt: r.Prompt}

	switch r.Type {
	case TypeMultipleChoice:
		q := MultipleChoice{Header: h, Choices: append([]string(nil), r.Choices...)}
		answer, err := decodeTextKey(r)
		q.Answer = answer
		return q, err
	case TypeFillInBlank:
		answer, err := decodeTextKey(r)
		return FillInBlank{Header: h, Answer: answer}, err
	case TypeTrueFalse:
		answer, err := decodeTextKey(r)
		return TrueFalse{Header: h, Answer: answer}, err
	case TypeMatching:
		q := Matching{Header: h}
		if len(r.AnswerKey) == 0 {
			return q, fmt.Errorf("question %d: missing answer key", r.ID)
		}
		if err := json.Unmarshal(r.AnswerKey, &q.Pairs); err != nil {
			return q, fmt.Errorf("question %d: decode pairs: %w", r.ID, err)
		}
		return q, nil
	default:
		return Unsupported{Header: h, Kind: r.Type}, fmt.Errorf("question %d: unknown type %q", r.ID, r.Type)
	}
}

func decodeTextKey(r Record) (string, error) {
	if len(r.AnswerKey) == 0 {
		return "", fmt.Errorf("question %d: missing answer key", r.ID)
	}
	var s string
	if err := json.Unmarshal(r.AnswerKey, &s); err != nil {
		return "", fmt.Errorf("question %d: decode answer key: %w", r.ID, err)
	}
	return s, nil
}

// Encode converts a typed question back into its storage form.
func Encode(q Question) (Record, error) {
	h := q.header()
	r := Record{ID: h.ID, Type: q.Type(), Prompt: h.Prompt}

	var key any
	switch v := q.(type) {
	case MultipleChoice:
		r.Choices = append([]string(nil), v.Choices...)
		key = v.Answer
	case FillInBlank:
		key = v.Answer
	case TrueFalse:
		key = v.Answer
	case Matching:
		key = v.Pairs
	default:
		return r, fmt.Errorf("question %d: cannot encode type %q", h.ID, q.Type())
	}

	raw, err := json.Marshal(key)
	if err != nil {
		return r, fmt.Errorf("question %d: encode answer key: %w", h.ID, err)
	}
	r.AnswerKey = raw
	return r, nil
}
