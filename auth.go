package qscrape

import "context"

// Credentials identify the account used to log in.
type Credentials struct {
	Email    string
	Password string
}

// Validate returns an error if the credentials are incomplete.
func (c Credentials) Validate() error {
	if c.Email == "" {
		return Errorf(EINVALID, "email required")
	}
	if c.Password == "" {
		return Errorf(EINVALID, "password required")
	}
	return nil
}

// String returns the email only so credentials can be logged safely.
func (c Credentials) String() string {
	return c.Email
}

// AuthResult holds the outcome of a login attempt.
type AuthResult struct {
	// Success reports whether the session is authenticated.
	Success bool

	// URL is the page the login submission ended up on.
	URL string
}

// Authenticator logs a session in.
type Authenticator interface {
	// Authenticate performs the login exchange through the session,
	// mutating its cookie state. The returned result is never nil.
	// A failed login returns Success=false together with an ETOKEN, EAUTH
	// or EFETCH error describing why.
	Authenticate(ctx context.Context, session Session, creds Credentials) (*AuthResult, error)
}

// LoginVerifier decides whether the page reached after submitting the login
// form belongs to an authenticated session.
type LoginVerifier interface {
	Verify(page *Page) bool
}
