package quiz

import (
	"math/rand/v2"
)

// SafeQuestion is the client-facing view of a question. The type has no
// answer-key field at all, so a sanitized payload cannot leak one.
type SafeQuestion struct {
	ID         int64        `json:"id"`
	Type       QuestionType `json:"type"`
	Prompt     string       `json:"prompt"`
	Choices    []string     `json:"choices,omitempty"`
	LeftItems  []string     `json:"leftItems,omitempty"`
	RightItems []string     `json:"rightItems,omitempty"`
}

// Sanitizer strips answer keys from questions. Matching items are shuffled
// with the configured shuffle function.
type Sanitizer struct {
	shuffle func(n int, swap func(i, j int))
}

// NewSanitizer returns a Sanitizer backed by rng. A nil rng uses the
// goroutine-safe global source. A *rand.Rand is not safe for concurrent use,
// so a Sanitizer built on one must not be shared across goroutines.
func NewSanitizer(rng *rand.Rand) *Sanitizer {
	if rng == nil {
		return &Sanitizer{shuffle: rand.Shuffle}
	}
	return &Sanitizer{shuffle: rng.Shuffle}
}

var defaultSanitizer = NewSanitizer(nil)

// Sanitize strips answer keys using the global random source.
func Sanitize(questions []Question) []SafeQuestion {
	return defaultSanitizer.Sanitize(questions)
}

// Reshuffle reshuffles Matching items using the global random source.
func Reshuffle(questions []SafeQuestion) []SafeQuestion {
	return defaultSanitizer.Reshuffle(questions)
}

// Sanitize returns client-safe copies of questions in the same order.
// The input is never modified.
func (s *Sanitizer) Sanitize(questions []Question) []SafeQuestion {
	out := make([]SafeQuestion, 0, len(questions))
	for _, q := range questions {
		h := q.header()
		sq := SafeQuestion{ID: h.ID, Type: q.Type(), Prompt: h.Prompt}

		switch v := q.(type) {
		case MultipleChoice:
			sq.Choices = append([]string{}, v.Choices...)
		case Matching:
			sq.LeftItems = make([]string, len(v.Pairs))
			sq.RightItems = make([]string, len(v.Pairs))
			for i, p := range v.Pairs {
				sq.LeftItems[i] = p.Left
				sq.RightItems[i] = p.Right
			}
			s.shuffleItems(sq.LeftItems)
			s.shuffleItems(sq.RightItems)
		}

		out = append(out, sq)
	}
	return out
}

// Reshuffle returns copies of already-sanitized questions. Every field is
// kept as is except the Matching items, which are shuffled again.
func (s *Sanitizer) Reshuffle(questions []SafeQuestion) []SafeQuestion {
	out := make([]SafeQuestion, len(questions))
	for i, q := range questions {
		c := q
		if q.Choices != nil {
			c.Choices = append([]string{}, q.Choices...)
		}
		if q.LeftItems != nil {
			c.LeftItems = append([]string{}, q.LeftItems...)
			s.shuffleItems(c.LeftItems)
		}
		if q.RightItems != nil {
			c.RightItems = append([]string{}, q.RightItems...)
			s.shuffleItems(c.RightItems)
		}
		out[i] = c
	}
	return out
}

func (s *Sanitizer) shuffleItems(items []string) {
	s.shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}
