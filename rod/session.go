// Package rod provides a headless-browser implementation of qscrape.Session
// for sites whose login requires JavaScript.
package rod

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/fwojciec/qscrape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultTimeout is the default timeout for a single navigation.
const DefaultTimeout = 30 * time.Second

// submitForm builds a POST form on the current page and submits it, so the
// browser performs a top-level navigation carrying its cookies.
const submitForm = `(action, fields) => {
	const form = document.createElement("form");
	form.method = "POST";
	form.action = action;
	for (const [name, values] of Object.entries(fields)) {
		for (const value of values) {
			const input = document.createElement("input");
			input.type = "hidden";
			input.name = name;
			input.value = value;
			form.appendChild(input);
		}
	}
	document.body.appendChild(form);
	form.submit();
}`

// Ensure Session implements qscrape.Session at compile time.
var _ qscrape.Session = (*Session)(nil)

// Session drives a single browser tab. Cookies live in the browser, so
// every request made through the session shares the login state.
//
// Session is not safe for concurrent use.
type Session struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	page      *rod.Page
	timeout   time.Duration
	userAgent string
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout sets the timeout for a single navigation.
// Defaults to DefaultTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithUserAgent overrides the browser's user agent.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// NewSession launches a headless Chrome browser and opens a blank tab.
// Close must be called when the Session is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}

	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("opening tab: %w", err)
	}

	if s.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.userAgent}); err != nil {
			_ = browser.Close()
			l.Kill()
			return nil, fmt.Errorf("setting user agent: %w", err)
		}
	}

	s.launcher = l
	s.browser = browser
	s.page = page
	return s, nil
}

// Get navigates the tab to the URL and returns the rendered page.
func (s *Session) Get(ctx context.Context, rawURL string) (*qscrape.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, qscrape.Errorf(qscrape.EFETCH, "GET %s: %v", rawURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	p := s.page.Context(ctx)

	if err := p.Navigate(rawURL); err != nil {
		return nil, qscrape.Errorf(qscrape.EFETCH, "GET %s: %v", rawURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, qscrape.Errorf(qscrape.EFETCH, "GET %s: %v", rawURL, err)
	}

	return s.snapshot(p, rawURL)
}

// PostForm submits the form from the current tab. If the tab is on another
// origin it first navigates to the form URL so the submission is same-site.
func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values) (*qscrape.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, qscrape.Errorf(qscrape.EFETCH, "POST %s: %v", rawURL, err)
	}

	if !s.sameOrigin(rawURL) {
		if _, err := s.Get(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	p := s.page.Context(ctx)

	wait := p.WaitNavigation(proto.PageLifecycleEventNameLoad)
	if _, err := p.Eval(submitForm, rawURL, form); err != nil {
		return nil, qscrape.Errorf(qscrape.EFETCH, "POST %s: %v", rawURL, err)
	}
	wait()
	if err := ctx.Err(); err != nil {
		return nil, qscrape.Errorf(qscrape.EFETCH, "POST %s: %v", rawURL, err)
	}

	return s.snapshot(p, rawURL)
}

// Close releases browser resources.
func (s *Session) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (s *Session) LauncherPID() int {
	return s.launcher.PID()
}

func (s *Session) snapshot(p *rod.Page, rawURL string) (*qscrape.Page, error) {
	html, err := p.HTML()
	if err != nil {
		return nil, qscrape.Errorf(qscrape.EFETCH, "reading %s: %v", rawURL, err)
	}

	final := rawURL
	if info, err := p.Info(); err == nil && info.URL != "" {
		final = info.URL
	}
	return &qscrape.Page{URL: final, HTML: html}, nil
}

func (s *Session) sameOrigin(rawURL string) bool {
	info, err := s.page.Info()
	if err != nil {
		return false
	}
	current, err := url.Parse(info.URL)
	if err != nil {
		return false
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return current.Scheme == target.Scheme && current.Host == target.Host
}
