package mock

import (
	"context"

	"github.com/fwojciec/qscrape"
)

var (
	_ qscrape.QuestionStore   = (*QuestionStore)(nil)
	_ qscrape.QuestionService = (*QuestionService)(nil)
)

// QuestionStore is a mock implementation of qscrape.QuestionStore.
type QuestionStore struct {
	SaveFn   func(ctx context.Context, q *qscrape.Question) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *QuestionStore) Save(ctx context.Context, q *qscrape.Question) error {
	return s.SaveFn(ctx, q)
}

func (s *QuestionStore) Commit() error {
	return s.CommitFn()
}

func (s *QuestionStore) Abort() error {
	return s.AbortFn()
}

// QuestionService is a mock implementation of qscrape.QuestionService.
type QuestionService struct {
	FindQuestionsFn func(ctx context.Context, filter qscrape.QuestionFilter) ([]*qscrape.Question, error)
}

func (s *QuestionService) FindQuestions(ctx context.Context, filter qscrape.QuestionFilter) ([]*qscrape.Question, error) {
	return s.FindQuestionsFn(ctx, filter)
}
