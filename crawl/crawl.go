// Package crawl provides the authenticated search crawl. It logs a session
// in, then walks the result pages of a search in order, collecting question
// records and the errors met along the way.
package crawl

import (
	"context"
	"errors"

	"github.com/fwojciec/qscrape"
	"github.com/fwojciec/qscrape/bloom"
)

// DefaultMaxPages bounds a crawl when Crawler.MaxPages is not set.
const DefaultMaxPages = 1000

// maxVisitedEstimate caps the number of pages the visited set is sized for.
// Larger crawls still work with a higher false positive rate.
const maxVisitedEstimate = 10000

// Crawler crawls the result pages of a search.
type Crawler struct {
	Session       qscrape.Session
	Authenticator qscrape.Authenticator
	Credentials   qscrape.Credentials
	Inspector     qscrape.SearchInspector
	Extractor     qscrape.QuestionExtractor
	Paginator     qscrape.Paginator

	// MaxPages stops the crawl after this many result pages.
	// Defaults to DefaultMaxPages when zero or negative.
	MaxPages int
}

// Result holds the outcome of a crawl.
type Result struct {
	// Questions in page order, then document order within a page.
	Questions []*qscrape.Question

	// Errors collected during the crawl, in the order they happened.
	Errors []error

	// Authenticated reports whether the login succeeded.
	Authenticated bool

	// Pages is the number of result pages fetched.
	Pages int

	// ResultCount is the number of matching questions announced by the
	// first results page.
	ResultCount int

	// Interrupted reports whether the crawl stopped because its context
	// was canceled. The questions collected until then are kept.
	Interrupted bool
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type ProgressType

	// Page is the number of the result page just processed.
	Page int

	// URL of the result page just processed.
	URL string

	// Questions is the number of questions collected so far.
	Questions int

	// Total is the number of matching questions announced by the site.
	Total int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressAuthenticated ProgressType = iota
	// ProgressCounted is sent once the first page announced its result
	// count, before that page is checked for an empty search.
	ProgressCounted
	ProgressPage
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawl logs in and collects the questions of every result page reachable
// from searchURL by following "next" links.
//
// Crawl errors never abort the call: they are collected in Result.Errors
// and the questions gathered before the error are returned. The only error
// returned is EINVALID for an empty searchURL.
func (c *Crawler) Crawl(ctx context.Context, searchURL string, progress ProgressFunc) (*Result, error) {
	if searchURL == "" {
		return nil, qscrape.Errorf(qscrape.EINVALID, "search URL required")
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	result := &Result{}
	defer func() {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Page:      result.Pages,
			Questions: len(result.Questions),
			Total:     result.ResultCount,
		})
	}()

	if ctx.Err() != nil {
		result.Interrupted = true
		return result, nil
	}

	if !c.authenticate(ctx, result) {
		return result, nil
	}
	progress(ProgressEvent{Type: ProgressAuthenticated})

	c.search(ctx, searchURL, result, progress)
	return result, nil
}

func (c *Crawler) authenticate(ctx context.Context, result *Result) bool {
	auth, err := c.Authenticator.Authenticate(ctx, c.Session, c.Credentials)
	if auth != nil && auth.Success && err == nil {
		result.Authenticated = true
		return true
	}

	if ctx.Err() != nil {
		result.Interrupted = true
		return false
	}
	if err != nil {
		result.Errors = append(result.Errors, err)
	}
	result.Errors = append(result.Errors, qscrape.Errorf(qscrape.EAUTH, "not authenticated"))
	return false
}

// search walks the result pages as an explicit loop so the number of pages
// is bounded by MaxPages rather than the call stack.
func (c *Crawler) search(ctx context.Context, searchURL string, result *Result, progress ProgressFunc) {
	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	visited := bloom.NewVisited(uint(min(maxPages, maxVisitedEstimate)), bloom.DefaultFalsePositiveRate)
	visited.Visit(searchURL)

	pageURL := searchURL
	for n := 1; ; n++ {
		if ctx.Err() != nil {
			result.Interrupted = true
			return
		}

		page, err := c.Session.Get(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				result.Interrupted = true
				return
			}
			result.Errors = append(result.Errors, fetchError(n, pageURL, err))
			return
		}
		result.Pages = n

		if n == 1 {
			result.ResultCount = c.Inspector.ResultCount(page.HTML)
			progress(ProgressEvent{
				Type:  ProgressCounted,
				Page:  n,
				URL:   page.URL,
				Total: result.ResultCount,
			})
		}

		if c.Inspector.IsEmptySearch(page.HTML) {
			result.Errors = append(result.Errors, qscrape.Errorf(qscrape.EEMPTY, "the search at %s has no questions", pageURL))
			return
		}

		extracted, err := c.Extractor.Extract(page.HTML)
		if err != nil {
			result.Errors = append(result.Errors, err)
			return
		}
		result.Questions = append(result.Questions, extracted.Questions...)
		result.Errors = append(result.Errors, extracted.Errors...)

		progress(ProgressEvent{
			Type:      ProgressPage,
			Page:      n,
			URL:       page.URL,
			Questions: len(result.Questions),
			Total:     result.ResultCount,
		})

		next, ok, err := c.Paginator.NextPage(page.HTML, page.URL)
		if err != nil {
			result.Errors = append(result.Errors, err)
			return
		}
		if !ok {
			return
		}

		if n >= maxPages {
			result.Errors = append(result.Errors, qscrape.Errorf(qscrape.ELOOP, "stopped after %d pages", maxPages))
			return
		}
		if !visited.Visit(next) {
			result.Errors = append(result.Errors, qscrape.Errorf(qscrape.ELOOP, "page %d links back to visited page %s", n, next))
			return
		}
		pageURL = next
	}
}

// fetchError codes a session failure as EFETCH, keeping its message.
func fetchError(n int, url string, err error) error {
	msg := err.Error()
	var e *qscrape.Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	return qscrape.Errorf(qscrape.EFETCH, "page %d (%s): %s", n, url, msg)
}
