package mock

import (
	"context"
	"net/url"

	"github.com/fwojciec/qscrape"
)

var _ qscrape.Session = (*Session)(nil)

// Session is a mock implementation of qscrape.Session.
type Session struct {
	GetFn      func(ctx context.Context, rawURL string) (*qscrape.Page, error)
	PostFormFn func(ctx context.Context, rawURL string, form url.Values) (*qscrape.Page, error)
	CloseFn    func() error
}

func (s *Session) Get(ctx context.Context, rawURL string) (*qscrape.Page, error) {
	return s.GetFn(ctx, rawURL)
}

func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values) (*qscrape.Page, error) {
	return s.PostFormFn(ctx, rawURL, form)
}

func (s *Session) Close() error {
	return s.CloseFn()
}
