package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/qscrape"
)

// Ensure QuestionExtractor implements qscrape.QuestionExtractor at compile time.
var _ qscrape.QuestionExtractor = (*QuestionExtractor)(nil)

// QuestionExtractor extracts question records from a search results page.
type QuestionExtractor struct {
	converter qscrape.Converter
}

// ExtractorOption configures a QuestionExtractor.
type ExtractorOption func(*QuestionExtractor)

// WithConverter renders enunciations as Markdown using c instead of plain
// text. Items whose enunciation fails to convert fall back to plain text.
func WithConverter(c qscrape.Converter) ExtractorOption {
	return func(e *QuestionExtractor) {
		e.converter = c
	}
}

// NewQuestionExtractor creates a new QuestionExtractor.
func NewQuestionExtractor(opts ...ExtractorOption) *QuestionExtractor {
	e := &QuestionExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the question items of the page in document order.
// Malformed items are reported in ExtractResult.Errors and skipped.
// Labels, choices and plain-text enunciations are trimmed of surrounding
// whitespace.
func (e *QuestionExtractor) Extract(html string) (*qscrape.ExtractResult, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	result := &qscrape.ExtractResult{}
	doc.Find(questionItemSelector).Each(func(i int, item *goquery.Selection) {
		q, err := e.extractQuestion(item)
		if err != nil {
			result.Errors = append(result.Errors,
				qscrape.Errorf(qscrape.EMALFORMED, "question %d: %s", i+1, qscrape.ErrorMessage(err)))
			return
		}
		result.Questions = append(result.Questions, q)
	})

	return result, nil
}

func (e *QuestionExtractor) extractQuestion(item *goquery.Selection) (*qscrape.Question, error) {
	spans := item.Find(questionInfoSelector).First().Find("span")
	if spans.Length() < 2 {
		return nil, qscrape.Errorf(qscrape.EMALFORMED, "missing year and board info")
	}

	enunciation := item.Find(enunciationSelector).First()
	if enunciation.Length() == 0 {
		return nil, qscrape.Errorf(qscrape.EMALFORMED, "missing enunciation")
	}

	options := item.Find(optionsSelector).First()
	if options.Length() == 0 {
		return nil, qscrape.Errorf(qscrape.EMALFORMED, "missing options list")
	}

	q := &qscrape.Question{
		Year:        labelValue(spans.Eq(0), "Ano:"),
		Board:       labelValue(spans.Eq(1), "Banca:"),
		Enunciation: e.enunciationText(enunciation),
		ImageURL:    strings.TrimSpace(item.Find("img").First().AttrOr("src", "")),
	}

	items := options.ChildrenFiltered("li")
	if items.Length() == 2 {
		q.Type = qscrape.QuestionTrueFalse
		return q, nil
	}

	q.Type = qscrape.QuestionMultiple
	items.EachWithBreak(func(i int, li *goquery.Selection) bool {
		if i >= qscrape.MaxChoices {
			return false
		}
		q.SetChoice(i, strings.TrimSpace(li.Find(optionEnumSelector).First().Text()))
		return true
	})

	return q, nil
}

func (e *QuestionExtractor) enunciationText(sel *goquery.Selection) string {
	text := strings.TrimSpace(sel.Text())
	if e.converter == nil {
		return text
	}

	inner, err := sel.Html()
	if err != nil {
		return text
	}
	md, err := e.converter.Convert(inner)
	if err != nil {
		return text
	}
	return strings.TrimSpace(md)
}

// labelValue strips a leading label such as "Ano:" from a span's text.
func labelValue(sel *goquery.Selection, label string) string {
	text := strings.TrimSpace(sel.Text())
	text = strings.TrimPrefix(text, label)
	return strings.TrimSpace(text)
}
