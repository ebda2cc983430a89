package mock

import (
	"context"

	"github.com/fwojciec/qscrape"
)

var (
	_ qscrape.Authenticator = (*Authenticator)(nil)
	_ qscrape.LoginVerifier = (*LoginVerifier)(nil)
)

// Authenticator is a mock implementation of qscrape.Authenticator.
type Authenticator struct {
	AuthenticateFn func(ctx context.Context, session qscrape.Session, creds qscrape.Credentials) (*qscrape.AuthResult, error)
}

func (a *Authenticator) Authenticate(ctx context.Context, session qscrape.Session, creds qscrape.Credentials) (*qscrape.AuthResult, error) {
	return a.AuthenticateFn(ctx, session, creds)
}

// LoginVerifier is a mock implementation of qscrape.LoginVerifier.
type LoginVerifier struct {
	VerifyFn func(page *qscrape.Page) bool
}

func (v *LoginVerifier) Verify(page *qscrape.Page) bool {
	return v.VerifyFn(page)
}
