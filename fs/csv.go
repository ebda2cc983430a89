// Package fs provides file-based export of questions.
package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/qscrape"
	"github.com/gocarina/gocsv"
)

// Ensure CSVStore implements qscrape.QuestionStore at compile time.
var _ qscrape.QuestionStore = (*CSVStore)(nil)

// CSVStore exports questions to a CSV file with atomic update semantics.
// Questions are staged in memory and written to path.tmp on Commit, which
// then replaces path. A failed or aborted export leaves an existing file
// untouched.
type CSVStore struct {
	path      string
	questions []*qscrape.Question
}

// NewCSVStore creates a CSVStore writing to path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) tempPath() string {
	return s.path + ".tmp"
}

// Save stages a question for export.
func (s *CSVStore) Save(ctx context.Context, q *qscrape.Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if q == nil {
		return qscrape.Errorf(qscrape.EINVALID, "question required")
	}
	s.questions = append(s.questions, q)
	return nil
}

// Len returns the number of staged questions.
func (s *CSVStore) Len() int {
	return len(s.questions)
}

// Commit writes the staged questions with a header row. Returns ENOTFOUND
// without touching the file system when nothing was staged.
func (s *CSVStore) Commit() error {
	if len(s.questions) == 0 {
		return qscrape.Errorf(qscrape.ENOTFOUND, "no data to export")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(s.tempPath())
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(s.questions, f); err != nil {
		_ = f.Close()
		_ = os.Remove(s.tempPath())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(s.tempPath())
		return err
	}

	if err := os.Rename(s.tempPath(), s.path); err != nil {
		_ = os.Remove(s.tempPath())
		return err
	}

	s.questions = nil
	return nil
}

// Abort discards staged questions and any partial temp file.
func (s *CSVStore) Abort() error {
	s.questions = nil
	if err := os.Remove(s.tempPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
