package qscrape

import (
	"context"
	"net/url"
)

// Page is a fetched document.
type Page struct {
	// URL is the final URL of the response after following redirects.
	URL string

	// HTML is the raw response body.
	HTML string
}

// Session retrieves pages while keeping cookies and headers across requests.
// A single Session is used for the whole lifetime of a crawl, so the
// authentication state established by an Authenticator carries over to the
// search requests made afterwards.
type Session interface {
	// Get fetches the URL and returns the page it ends up on.
	// Returns EFETCH if the request fails or the server answers with an
	// error status.
	Get(ctx context.Context, url string) (*Page, error)

	// PostForm submits form values to the URL and returns the page the
	// submission ends up on.
	PostForm(ctx context.Context, url string, form url.Values) (*Page, error)

	// Close releases resources held by the session.
	Close() error
}
