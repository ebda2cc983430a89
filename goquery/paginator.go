package goquery

import (
	"net/url"
	"strings"

	"github.com/fwojciec/qscrape"
)

// Ensure Paginator implements qscrape.Paginator at compile time.
var _ qscrape.Paginator = (*Paginator)(nil)

// Paginator follows the "next" link of the search results pagination.
type Paginator struct{}

// NewPaginator creates a new Paginator.
func NewPaginator() *Paginator {
	return &Paginator{}
}

// NextPage returns the absolute URL of the next results page.
// A page without the pagination nav, or whose nav has no next link, is the
// last page. Absolute hrefs are returned as they are.
func (p *Paginator) NextPage(html string, baseURL string) (string, bool, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false, qscrape.Errorf(qscrape.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := parse(html)
	if err != nil {
		return "", false, err
	}

	nav := doc.Find(paginationSelector).First()
	if nav.Length() == 0 {
		return "", false, nil
	}

	href := strings.TrimSpace(nav.Find(nextLinkSelector).First().AttrOr("href", ""))
	if href == "" {
		return "", false, nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false, qscrape.Errorf(qscrape.EINVALID, "invalid next page link %q: %v", href, err)
	}

	return base.ResolveReference(ref).String(), true, nil
}
