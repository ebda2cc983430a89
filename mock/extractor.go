package mock

import "github.com/fwojciec/qscrape"

var (
	_ qscrape.QuestionExtractor = (*QuestionExtractor)(nil)
	_ qscrape.SearchInspector   = (*SearchInspector)(nil)
)

// QuestionExtractor is a mock implementation of qscrape.QuestionExtractor.
type QuestionExtractor struct {
	ExtractFn func(html string) (*qscrape.ExtractResult, error)
}

func (e *QuestionExtractor) Extract(html string) (*qscrape.ExtractResult, error) {
	return e.ExtractFn(html)
}

// SearchInspector is a mock implementation of qscrape.SearchInspector.
type SearchInspector struct {
	IsEmptySearchFn func(html string) bool
	ResultCountFn   func(html string) int
}

func (s *SearchInspector) IsEmptySearch(html string) bool {
	return s.IsEmptySearchFn(html)
}

func (s *SearchInspector) ResultCount(html string) int {
	return s.ResultCountFn(html)
}
