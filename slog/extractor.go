package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/qscrape"
)

// Ensure LoggingQuestionExtractor implements qscrape.QuestionExtractor.
var _ qscrape.QuestionExtractor = (*LoggingQuestionExtractor)(nil)

// LoggingQuestionExtractor wraps a QuestionExtractor with debug logging.
type LoggingQuestionExtractor struct {
	next   qscrape.QuestionExtractor
	logger *slog.Logger
}

// NewLoggingQuestionExtractor creates a new LoggingQuestionExtractor.
func NewLoggingQuestionExtractor(next qscrape.QuestionExtractor, logger *slog.Logger) *LoggingQuestionExtractor {
	return &LoggingQuestionExtractor{next: next, logger: logger}
}

// Extract logs how many questions and malformed items a page produced.
func (e *LoggingQuestionExtractor) Extract(html string) (result *qscrape.ExtractResult, err error) {
	defer func(begin time.Time) {
		var questions, malformed int
		if result != nil {
			questions = len(result.Questions)
			malformed = len(result.Errors)
		}
		e.logger.Debug("extract",
			"bytes", len(html),
			"questions", questions,
			"malformed", malformed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html)
}
