package goquery

import (
	"strconv"
	"strings"

	"github.com/fwojciec/qscrape"
)

// Ensure SearchInspector implements qscrape.SearchInspector at compile time.
var _ qscrape.SearchInspector = (*SearchInspector)(nil)

// SearchInspector reads the empty-search alert and the results heading of
// a search results page.
type SearchInspector struct{}

// NewSearchInspector creates a new SearchInspector.
func NewSearchInspector() *SearchInspector {
	return &SearchInspector{}
}

// IsEmptySearch reports whether the page shows the empty-search alert.
func (s *SearchInspector) IsEmptySearch(html string) bool {
	doc, err := parse(html)
	if err != nil {
		return false
	}
	return doc.Find(emptySearchSelector).Length() > 0
}

// ResultCount returns the number of matching questions from the results
// heading, e.g. "1.234" -> 1234. Pages without a readable count return 1.
func (s *SearchInspector) ResultCount(html string) int {
	doc, err := parse(html)
	if err != nil {
		return 1
	}

	sel := doc.Find(resultCountSelector).First()
	if sel.Length() == 0 {
		return 1
	}

	text := strings.TrimSpace(strings.ReplaceAll(sel.Text(), ".", ""))
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 1
	}
	return n
}
