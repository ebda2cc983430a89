package goquery

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/qscrape"
)

// Ensure Authenticator implements qscrape.Authenticator at compile time.
var _ qscrape.Authenticator = (*Authenticator)(nil)

// Authenticator logs in by exchanging the anti-forgery token found on the
// login page for an authenticated session.
type Authenticator struct {
	// LoginURL is the absolute URL of the login form.
	LoginURL string

	// Verifier decides whether the login submission succeeded.
	Verifier qscrape.LoginVerifier
}

// NewAuthenticator creates an Authenticator for the given login URL.
// Success is detected by a redirect into the authenticated area.
func NewAuthenticator(loginURL string) *Authenticator {
	return &Authenticator{
		LoginURL: loginURL,
		Verifier: NewRedirectVerifier(AuthenticatedPathSegment),
	}
}

// Authenticate fetches the login form, submits the credentials bound to its
// token and verifies where the submission lands.
func (a *Authenticator) Authenticate(ctx context.Context, session qscrape.Session, creds qscrape.Credentials) (*qscrape.AuthResult, error) {
	if err := creds.Validate(); err != nil {
		return &qscrape.AuthResult{}, err
	}

	page, err := session.Get(ctx, a.LoginURL)
	if err != nil {
		return &qscrape.AuthResult{}, err
	}

	token, err := FindLoginToken(page.HTML)
	if err != nil {
		return &qscrape.AuthResult{URL: page.URL}, err
	}

	page, err = session.PostForm(ctx, a.LoginURL, LoginForm(token, creds))
	if err != nil {
		return &qscrape.AuthResult{}, err
	}

	if !a.Verifier.Verify(page) {
		return &qscrape.AuthResult{URL: page.URL},
			qscrape.Errorf(qscrape.EAUTH, "login was not accepted (landed on %s)", page.URL)
	}

	return &qscrape.AuthResult{Success: true, URL: page.URL}, nil
}

// FindLoginToken returns the value of the hidden anti-forgery token input.
// Returns ETOKEN if the page has no such input or the input is empty.
func FindLoginToken(html string) (string, error) {
	doc, err := parse(html)
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(doc.Find(loginTokenSelector).First().AttrOr("value", ""))
	if token == "" {
		return "", qscrape.Errorf(qscrape.ETOKEN, "could not get the authentication token")
	}
	return token, nil
}

// LoginForm builds the login form payload.
func LoginForm(token string, creds qscrape.Credentials) url.Values {
	form := url.Values{}
	form.Set("utf8", "")
	form.Set(LoginTokenField, token)
	form.Set("user[email]", creds.Email)
	form.Set("user[password]", creds.Password)
	form.Set("commit", "Entrar")
	return form
}
