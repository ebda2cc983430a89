// Package resty provides an HTTP implementation of qscrape.Session backed by
// a resty client with a persistent cookie jar.
package resty

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/fwojciec/qscrape"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent with every request. The site serves a reduced page
// to clients without a browser user agent.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_3) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/35.0.1916.47 Safari/537.36"

// maxRedirects bounds the redirect chain of a single request.
const maxRedirects = 10

// Ensure Session implements qscrape.Session at compile time.
var _ qscrape.Session = (*Session)(nil)

// Session is a cookie-preserving HTTP session.
type Session struct {
	client    *resty.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout sets the per-request timeout.
// Defaults to DefaultTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// WithLogger logs every HTTP exchange, including each request made while
// following redirects, at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a new Session with an empty cookie jar.
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, qscrape.Errorf(qscrape.EINTERNAL, "failed to create cookie jar: %v", err)
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetHeader("User-Agent", s.userAgent)
	client.SetTimeout(s.timeout)

	policies := []interface{}{resty.FlexibleRedirectPolicy(maxRedirects)}
	if s.logger != nil {
		policies = append(policies, resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
			s.logger.Debug("redirect", "from", via[len(via)-1].URL.String(), "to", req.URL.String())
			return nil
		}))
		client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
			s.logger.Debug("response",
				"method", res.Request.Method,
				"url", res.Request.URL,
				"status", res.StatusCode(),
				"duration", res.Time(),
			)
			return nil
		})
	}
	client.SetRedirectPolicy(policies...)

	s.client = client
	return s, nil
}

// Get fetches the URL, following redirects. Responses with a status of 400
// or above are returned as EFETCH errors.
func (s *Session) Get(ctx context.Context, rawURL string) (*qscrape.Page, error) {
	res, err := s.client.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return nil, qscrape.Errorf(qscrape.EFETCH, "GET %s: %v", rawURL, err)
	}
	if res.IsError() {
		return nil, qscrape.Errorf(qscrape.EFETCH, "GET %s: HTTP %d", rawURL, res.StatusCode())
	}
	return page(res, rawURL), nil
}

// PostForm submits the form url-encoded and follows the resulting redirects.
// Client errors are returned as pages rather than errors: a rejected login is
// commonly answered with 401 or 422 and the login form, and it is up to the
// caller to interpret that page. Server errors are returned as EFETCH.
func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values) (*qscrape.Page, error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		Post(rawURL)
	if err != nil {
		return nil, qscrape.Errorf(qscrape.EFETCH, "POST %s: %v", rawURL, err)
	}
	if res.StatusCode() >= http.StatusInternalServerError {
		return nil, qscrape.Errorf(qscrape.EFETCH, "POST %s: HTTP %d", rawURL, res.StatusCode())
	}
	return page(res, rawURL), nil
}

// Close releases idle connections.
func (s *Session) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return nil
}

// page builds a qscrape.Page from the response. The final request of the
// redirect chain carries the URL the response came from.
func page(res *resty.Response, rawURL string) *qscrape.Page {
	final := rawURL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		final = res.RawResponse.Request.URL.String()
	}
	return &qscrape.Page{URL: final, HTML: string(res.Body())}
}
