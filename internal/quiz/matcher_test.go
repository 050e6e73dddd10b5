package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCorrect_MultipleChoiceIsCaseSensitive(t *testing.T) {
	q := MultipleChoice{
		Header:  Header{ID: 1, Prompt: "Capital of France?"},
		Choices: []string{"Paris", "Rome"},
		Answer:  "Paris",
	}

	assert.True(t, IsCorrect(q, TextAnswer("Paris")))
	assert.False(t, IsCorrect(q, TextAnswer("paris")))
	assert.False(t, IsCorrect(q, TextAnswer(" Paris")))
}

func TestIsCorrect_TrueFalse(t *testing.T) {
	q := TrueFalse{Header: Header{ID: 4}, Answer: AnswerTrue}

	assert.True(t, IsCorrect(q, TextAnswer("True")))
	assert.False(t, IsCorrect(q, TextAnswer("true")))
	assert.False(t, IsCorrect(q, TextAnswer("False")))
	assert.False(t, IsCorrect(q, Answer("true")), "JSON boolean is not a string answer")
}

func TestIsCorrect_FillInBlankNormalizes(t *testing.T) {
	q := FillInBlank{Header: Header{ID: 2}, Answer: "Oxygen"}

	assert.True(t, IsCorrect(q, TextAnswer(" oxygen ")))
	assert.True(t, IsCorrect(q, TextAnswer("OXYGEN")))
	assert.False(t, IsCorrect(q, TextAnswer("oxy gen")))
}

func TestIsCorrect_MatchingIgnoresOrder(t *testing.T) {
	q := Matching{
		Header: Header{ID: 3},
		Pairs:  []Pair{{"France", "Paris"}, {"Italy", "Rome"}},
	}

	assert.True(t, IsCorrect(q, PairsAnswer(Pair{"Italy", "Rome"}, Pair{"France", "Paris"})))
	assert.False(t, IsCorrect(q, PairsAnswer(Pair{"France", "Rome"}, Pair{"Italy", "Paris"})))
	assert.False(t, IsCorrect(q, PairsAnswer(Pair{"France", "Paris"})), "missing pair")
	assert.False(t, IsCorrect(q, PairsAnswer(Pair{"France", "Paris"}, Pair{"France", "Paris"})), "duplicated pair")
	assert.False(t, IsCorrect(q, PairsAnswer(
		Pair{"France", "Paris"}, Pair{"Italy", "Rome"}, Pair{"Spain", "Madrid"},
	)), "extra pair")
}

func TestIsCorrect_MalformedShapesAreIncorrect(t *testing.T) {
	matching := Matching{Header: Header{ID: 3}, Pairs: []Pair{{"a", "1"}, {"b", "2"}}}
	mc := MultipleChoice{Header: Header{ID: 1}, Choices: []string{"a", "b"}, Answer: "a"}

	cases := []struct {
		name string
		q    Question
		ans  Answer
	}{
		{"matching given a string", matching, TextAnswer("a-1")},
		{"matching given an object", matching, Answer(`{"left":"a","right":"1"}`)},
		{"matching given null", matching, Answer("null")},
		{"choice given a list", mc, PairsAnswer(Pair{"a", "b"})},
		{"choice given a number", mc, Answer("1")},
		{"choice given nothing", mc, nil},
		{"choice given broken json", mc, Answer(`"a`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, IsCorrect(tc.q, tc.ans))
			})
		})
	}
}

func TestIsCorrect_UnknownTypeOrMissingKey(t *testing.T) {
	assert.False(t, IsCorrect(Unsupported{Header: Header{ID: 9}, Kind: "Essay"}, TextAnswer("anything")))
	assert.False(t, IsCorrect(MultipleChoice{Header: Header{ID: 1}}, TextAnswer("")))
	assert.False(t, IsCorrect(FillInBlank{Header: Header{ID: 2}}, TextAnswer("  ")))
	assert.False(t, IsCorrect(Matching{Header: Header{ID: 3}}, PairsAnswer()))
}

func TestAnswer_RoundTripsThroughJSON(t *testing.T) {
	var e Entry
	err := json.Unmarshal([]byte(`{"questionId": 7, "answer": [{"left":"x","right":"y"}]}`), &e)
	assert.NoError(t, err)

	pairs, ok := e.Answer.Pairs()
	assert.True(t, ok)
	assert.Equal(t, []Pair{{"x", "y"}}, pairs)

	_, ok = e.Answer.Text()
	assert.False(t, ok)
}
