// Package goquery implements the qscrape parsing interfaces on top of
// goquery CSS selectors. The selectors below are a compatibility contract
// with the current markup of the question-bank site; when the site changes
// its markup, these are the values that need updating.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/qscrape"
)

// Site paths.
const (
	// LoginPath is the path of the login form, relative to the site root.
	LoginPath = "/conta/entrar"

	// AuthenticatedPathSegment appears in the URL of every page inside the
	// logged-in area. A successful login redirects there.
	AuthenticatedPathSegment = "/usuario"

	// LoginTokenField is the name of the hidden anti-forgery token input.
	LoginTokenField = "authenticity_token"
)

// CSS selectors.
const (
	loginTokenSelector   = `input[name="authenticity_token"][type="hidden"]`
	paginationSelector   = "nav.js-pagination"
	nextLinkSelector     = `a[rel~="next"]`
	resultCountSelector  = "h2.q-page-results-title strong"
	emptySearchSelector  = "div.alert-empty-search"
	questionItemSelector = "div.q-question-item"
	questionInfoSelector = "div.q-question-info"
	enunciationSelector  = "div.q-question-enunciation"
	optionsSelector      = "ul.q-question-options"
	optionEnumSelector   = "div.q-item-enum"
)

// parse builds a document from raw HTML.
func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, qscrape.Errorf(qscrape.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}
