package qscrape

// Paginator discovers the next page of a paginated result set.
type Paginator interface {
	// NextPage returns the absolute URL of the page following the given
	// one. The bool result is false when the page is the last one,
	// including when it carries no pagination at all.
	// The baseURL is used to resolve relative links.
	NextPage(html string, baseURL string) (string, bool, error)
}
