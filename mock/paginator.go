package mock

import "github.com/fwojciec/qscrape"

var _ qscrape.Paginator = (*Paginator)(nil)

// Paginator is a mock implementation of qscrape.Paginator.
type Paginator struct {
	NextPageFn func(html string, baseURL string) (string, bool, error)
}

func (p *Paginator) NextPage(html string, baseURL string) (string, bool, error) {
	return p.NextPageFn(html, baseURL)
}
