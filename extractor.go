package qscrape

// ExtractResult holds the questions extracted from a results page.
type ExtractResult struct {
	// Questions in document order.
	Questions []*Question

	// Errors holds one EMALFORMED error per question item that could not
	// be extracted. Malformed items never prevent extraction of their
	// siblings.
	Errors []error
}

// QuestionExtractor extracts question records from a results page.
type QuestionExtractor interface {
	// Extract parses HTML and returns every question item it contains.
	// Extraction is a pure function of its input.
	Extract(html string) (*ExtractResult, error)
}

// SearchInspector reads the status markers of a search results page.
type SearchInspector interface {
	// IsEmptySearch reports whether the page signals that the search
	// matched nothing.
	IsEmptySearch(html string) bool

	// ResultCount returns the total number of matching questions announced
	// by the page. It returns 1 when the page carries no count.
	ResultCount(html string) int
}
