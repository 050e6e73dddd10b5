package quiz

import (
	"fmt"
	"strings"
)

const (
	minChoices      = 2
	maxChoices      = 10
	minMatchPairs   = 2
	maxMatchPairs   = 10
	maxAnswerLength = 500
)

// ValidationError describes why a question body was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks that a question authored by a user is well formed: the
// answer key is present and consistent with the question type.
func Validate(q Question) error {
	if strings.TrimSpace(PromptOf(q)) == "" {
		return invalid("prompt", "is required")
	}

	switch v := q.(type) {
	case MultipleChoice:
		return validateMultipleChoice(v)
	case FillInBlank:
		return validateText("answer", v.Answer)
	case TrueFalse:
		if v.Answer != AnswerTrue && v.Answer != AnswerFalse {
			return invalid("answer", "must be %q or %q", AnswerTrue, AnswerFalse)
		}
		return nil
	case Matching:
		return validateMatching(v)
	default:
		return invalid("type", "unsupported question type %q", q.Type())
	}
}

func validateMultipleChoice(q MultipleChoice) error {
	if len(q.Choices) < minChoices || len(q.Choices) > maxChoices {
		return invalid("choices", "must have between %d and %d choices", minChoices, maxChoices)
	}

	seen := make(map[string]bool, len(q.Choices))
	for _, c := range q.Choices {
		if strings.TrimSpace(c) == "" {
			return invalid("choices", "choices cannot be empty")
		}
		if seen[c] {
			return invalid("choices", "duplicate choice %q", c)
		}
		seen[c] = true
	}

	if err := validateText("answer", q.Answer); err != nil {
		return err
	}
	if !seen[q.Answer] {
		return invalid("answer", "must be one of the choices")
	}
	return nil
}

func validateMatching(q Matching) error {
	if len(q.Pairs) < minMatchPairs || len(q.Pairs) > maxMatchPairs {
		return invalid("pairs", "must have between %d and %d pairs", minMatchPairs, maxMatchPairs)
	}

	lefts := make(map[string]bool, len(q.Pairs))
	rights := make(map[string]bool, len(q.Pairs))
	for i, p := range q.Pairs {
		if strings.TrimSpace(p.Left) == "" || strings.TrimSpace(p.Right) == "" {
			return invalid(fmt.Sprintf("pairs[%d]", i), "left and right are required")
		}
		if lefts[p.Left] {
			return invalid(fmt.Sprintf("pairs[%d].left", i), "duplicate left item %q", p.Left)
		}
		if rights[p.Right] {
			return invalid(fmt.Sprintf("pairs[%d].right", i), "duplicate right item %q", p.Right)
		}
		lefts[p.Left] = true
		rights[p.Right] = true
	}
	return nil
}

func validateText(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return invalid(field, "is required")
	}
	if len(s) > maxAnswerLength {
		return invalid(field, "must be at most %d characters", maxAnswerLength)
	}
	return nil
}
