package goquery

import (
	"strings"

	"github.com/fwojciec/qscrape"
)

// Compile-time interface verification.
var (
	_ qscrape.LoginVerifier = (*RedirectVerifier)(nil)
	_ qscrape.LoginVerifier = (*ContentVerifier)(nil)
)

// RedirectVerifier accepts a login when the final URL contains a path
// segment of the authenticated area.
//
// Sites that answer a successful login without redirecting are reported as
// failed logins. Use ContentVerifier for those.
type RedirectVerifier struct {
	Segment string
}

// NewRedirectVerifier creates a RedirectVerifier for the given path segment.
func NewRedirectVerifier(segment string) *RedirectVerifier {
	return &RedirectVerifier{Segment: segment}
}

// Verify reports whether the page URL lies inside the authenticated area.
func (v *RedirectVerifier) Verify(page *qscrape.Page) bool {
	if page == nil || v.Segment == "" {
		return false
	}
	return strings.Contains(page.URL, v.Segment)
}

// ContentVerifier accepts a login when the landing page contains an element
// that only logged-in users see.
type ContentVerifier struct {
	Selector string
}

// NewContentVerifier creates a ContentVerifier for the given CSS selector.
func NewContentVerifier(selector string) *ContentVerifier {
	return &ContentVerifier{Selector: selector}
}

// Verify reports whether the page contains the selector.
func (v *ContentVerifier) Verify(page *qscrape.Page) bool {
	if page == nil || v.Selector == "" {
		return false
	}
	doc, err := parse(page.HTML)
	if err != nil {
		return false
	}
	return doc.Find(v.Selector).Length() > 0
}
