package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/quiz"
	"github.com/studai/studai-backend/internal/repository"
)

type fakeQuestionStore struct {
	mu        sync.Mutex
	records   map[int64][]quiz.Record
	nextID    int64
	listCalls int
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{records: map[int64][]quiz.Record{}}
}

func (f *fakeQuestionStore) put(quizID int64, qs []model.Question) {
	recs := make([]quiz.Record, 0, len(qs))
	for _, q := range qs {
		f.nextID++
		q.ID = f.nextID
		q.QuizID = quizID
		recs = append(recs, quiz.Record{
			ID:        q.ID,
			Type:      q.Type,
			Prompt:    q.Prompt,
			Choices:   q.Choices,
			AnswerKey: q.AnswerKey,
		})
	}
	f.records[quizID] = recs
}

func (f *fakeQuestionStore) ListByQuiz(_ context.Context, quizID int64) ([]quiz.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]quiz.Record(nil), f.records[quizID]...), nil
}

func (f *fakeQuestionStore) ReplaceAll(_ context.Context, quizID int64, qs []model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(quizID, qs)
	return nil
}

func (f *fakeQuestionStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeQuizStore struct {
	mu        sync.Mutex
	quizzes   map[int64]*model.Quiz
	questions *fakeQuestionStore
	nextID    int64
	createErr error
}

func newFakeQuizStore(questions *fakeQuestionStore) *fakeQuizStore {
	return &fakeQuizStore{quizzes: map[int64]*model.Quiz{}, questions: questions}
}

func (f *fakeQuizStore) GetByID(_ context.Context, id int64) (*model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuizStore) ListPaginated(_ context.Context, filter repository.QuizFilter, limit, offset int) ([]model.Quiz, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Quiz
	for id := int64(1); id <= f.nextID; id++ {
		q, ok := f.quizzes[id]
		if !ok {
			continue
		}
		if filter.OwnerID != nil && q.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.VisibleTo != nil && !q.IsPublic && q.OwnerID != *filter.VisibleTo {
			continue
		}
		out = append(out, *q)
	}
	total := len(out)
	if offset >= total {
		return []model.Quiz{}, total, nil
	}
	return out[offset:min(offset+limit, total)], total, nil
}

func (f *fakeQuizStore) CreateWithQuestions(_ context.Context, q *model.Quiz, qs []model.Question) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	q.ID = f.nextID
	q.QuestionCount = len(qs)
	cp := *q
	f.quizzes[q.ID] = &cp

	f.questions.mu.Lock()
	f.questions.put(q.ID, qs)
	f.questions.mu.Unlock()
	return nil
}

func (f *fakeQuizStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.quizzes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.quizzes, id)
	return nil
}

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts []model.QuizAttempt
}

func (f *fakeAttemptStore) ListByUser(_ context.Context, userID, limit, offset int) ([]model.QuizAttempt, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.QuizAttempt
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	total := len(out)
	if offset >= total {
		return []model.QuizAttempt{}, total, nil
	}
	return out[offset:min(offset+limit, total)], total, nil
}

func (f *fakeAttemptStore) ListByQuiz(_ context.Context, quizID int64) ([]model.QuizAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.QuizAttempt
	for _, a := range f.attempts {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) add(a model.QuizAttempt) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.attempts = append(f.attempts, a)
}
