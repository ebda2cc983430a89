package qscrape

import "context"

// QuestionStore persists exported questions with atomic semantics.
// Save stages a question; Commit makes all staged questions permanent;
// Abort discards them.
type QuestionStore interface {
	Save(ctx context.Context, q *Question) error
	Commit() error
	Abort() error
}

// QuestionFilter represents a filter for FindQuestions.
type QuestionFilter struct {
	SearchURL *string `json:"searchUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// QuestionService reads previously stored questions.
type QuestionService interface {
	// FindQuestions returns stored questions in crawl order.
	FindQuestions(ctx context.Context, filter QuestionFilter) ([]*Question, error)
}
