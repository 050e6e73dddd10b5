package quiz

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Answer is a submitted answer exactly as the client sent it. Its shape is
// only interpreted against the question it answers.
type Answer json.RawMessage

// TextAnswer builds an Answer holding a JSON string.
func TextAnswer(s string) Answer {
	raw, _ := json.Marshal(s)
	return Answer(raw)
}

// PairsAnswer builds an Answer holding a list of pairs.
func PairsAnswer(pairs ...Pair) Answer {
	if pairs == nil {
		pairs = []Pair{}
	}
	raw, _ := json.Marshal(pairs)
	return Answer(raw)
}

// MarshalJSON keeps the raw bytes, or null when empty.
func (a Answer) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return []byte(a), nil
}

// UnmarshalJSON stores a copy of the raw bytes.
func (a *Answer) UnmarshalJSON(data []byte) error {
	*a = append((*a)[0:0], data...)
	return nil
}

// Text returns the answer as a string if it was sent as a JSON string.
func (a Answer) Text() (string, bool) {
	trimmed := bytes.TrimSpace(a)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}

// Pairs returns the answer as a list of pairs if it was sent as a JSON array
// of {left, right} objects.
func (a Answer) Pairs() ([]Pair, bool) {
	trimmed := bytes.TrimSpace(a)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var pairs []Pair
	if err := json.Unmarshal(trimmed, &pairs); err != nil {
		return nil, false
	}
	return pairs, true
}

// IsCorrect reports whether submitted is a correct answer to q.
// A wrong shape, an unknown question type or a missing answer key all count
// as incorrect.
func IsCorrect(q Question, submitted Answer) bool {
	switch v := q.(type) {
	case MultipleChoice:
		return matchExact(v.Answer, submitted)
	case TrueFalse:
		return matchExact(v.Answer, submitted)
	case FillInBlank:
		if v.Answer == "" {
			return false
		}
		s, ok := submitted.Text()
		if !ok {
			return false
		}
		return normalizeBlank(s) == normalizeBlank(v.Answer)
	case Matching:
		return matchPairs(v.Pairs, submitted)
	default:
		return false
	}
}

func matchExact(key string, submitted Answer) bool {
	if key == "" {
		return false
	}
	s, ok := submitted.Text()
	return ok && s == key
}

func normalizeBlank(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matchPairs(key []Pair, submitted Answer) bool {
	if len(key) == 0 {
		return false
	}
	got, ok := submitted.Pairs()
	if !ok || len(got) != len(key) {
		return false
	}

	seen := make(map[Pair]struct{}, len(got))
	for _, p := range got {
		seen[p] = struct{}{}
	}
	for _, p := range key {
		if _, ok := seen[p]; !ok {
			return false
		}
	}
	return true
}
