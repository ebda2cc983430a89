// Package slog provides logging decorators for qscrape services.
package slog

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/qscrape"
)

// Ensure LoggingSession implements qscrape.Session.
var _ qscrape.Session = (*LoggingSession)(nil)

// LoggingSession wraps a Session with request logging. Form values are
// never logged, only their field count.
type LoggingSession struct {
	next   qscrape.Session
	logger *slog.Logger
}

// NewLoggingSession creates a new LoggingSession.
func NewLoggingSession(next qscrape.Session, logger *slog.Logger) *LoggingSession {
	return &LoggingSession{next: next, logger: logger}
}

// Get logs the URL being fetched and delegates to the wrapped session.
func (s *LoggingSession) Get(ctx context.Context, rawURL string) (page *qscrape.Page, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("get",
			"url", rawURL,
			"final_url", finalURL(page),
			"bytes", pageBytes(page),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Get(ctx, rawURL)
}

// PostForm logs the submission and delegates to the wrapped session.
func (s *LoggingSession) PostForm(ctx context.Context, rawURL string, form url.Values) (page *qscrape.Page, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("post",
			"url", rawURL,
			"fields", len(form),
			"final_url", finalURL(page),
			"bytes", pageBytes(page),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.PostForm(ctx, rawURL, form)
}

// Close delegates to the wrapped session.
func (s *LoggingSession) Close() error {
	return s.next.Close()
}

func finalURL(page *qscrape.Page) string {
	if page == nil {
		return ""
	}
	return page.URL
}

func pageBytes(page *qscrape.Page) int {
	if page == nil {
		return 0
	}
	return len(page.HTML)
}
