package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/qscrape"
)

// Ensure LoggingAuthenticator implements qscrape.Authenticator.
var _ qscrape.Authenticator = (*LoggingAuthenticator)(nil)

// LoggingAuthenticator wraps an Authenticator with logging.
type LoggingAuthenticator struct {
	next   qscrape.Authenticator
	logger *slog.Logger
}

// NewLoggingAuthenticator creates a new LoggingAuthenticator.
func NewLoggingAuthenticator(next qscrape.Authenticator, logger *slog.Logger) *LoggingAuthenticator {
	return &LoggingAuthenticator{next: next, logger: logger}
}

// Authenticate logs the outcome of the login, identifying the account by
// email only.
func (a *LoggingAuthenticator) Authenticate(ctx context.Context, session qscrape.Session, creds qscrape.Credentials) (result *qscrape.AuthResult, err error) {
	defer func(begin time.Time) {
		success := result != nil && result.Success
		level := slog.LevelInfo
		if !success {
			level = slog.LevelWarn
		}
		a.logger.Log(ctx, level, "authenticate",
			"email", creds.String(),
			"success", success,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Authenticate(ctx, session, creds)
}
