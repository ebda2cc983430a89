package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/qscrape"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ qscrape.QuestionStore   = (*QuestionStore)(nil)
	_ qscrape.QuestionService = (*QuestionService)(nil)
)

// timestampFormat has fixed width so timestamps sort lexically.
const timestampFormat = "2006-01-02T15:04:05.000000000Z"

// QuestionStore saves the questions of one crawl run inside a transaction.
// Questions already stored for the same search URL are skipped, so
// re-running a search only adds what is new.
type QuestionStore struct {
	db        *DB
	searchURL string
	runID     string

	tx       *sql.Tx
	position int
	added    int
	skipped  int
}

// NewQuestionStore creates a QuestionStore for a run of searchURL.
func NewQuestionStore(db *DB, searchURL string) *QuestionStore {
	return &QuestionStore{
		db:        db,
		searchURL: searchURL,
		runID:     uuid.New().String(),
	}
}

// RunID returns the ID of the run the questions are saved under.
func (s *QuestionStore) RunID() string {
	return s.runID
}

// Added returns the number of new questions saved.
func (s *QuestionStore) Added() int {
	return s.added
}

// Skipped returns the number of questions skipped as duplicates.
func (s *QuestionStore) Skipped() int {
	return s.skipped
}

// Save stages the question in the run's transaction, starting the
// transaction on first use.
func (s *QuestionStore) Save(ctx context.Context, q *qscrape.Question) error {
	if q == nil {
		return qscrape.Errorf(qscrape.EINVALID, "question required")
	}
	if s.searchURL == "" {
		return qscrape.Errorf(qscrape.EINVALID, "search URL required")
	}

	if s.tx == nil {
		tx, err := s.db.BeginTx(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, search_url, started_at) VALUES (?, ?, ?)
		`, s.runID, s.searchURL, time.Now().UTC().Format(timestampFormat)); err != nil {
			_ = tx.Rollback()
			return err
		}
		s.tx = tx
	}

	res, err := s.tx.ExecContext(ctx, `
		INSERT INTO questions (id, run_id, search_url, position, content_hash,
			year, board, enunciation, image_url,
			choice_a, choice_b, choice_c, choice_d, choice_e, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (search_url, content_hash) DO NOTHING
	`, uuid.New().String(), s.runID, s.searchURL, s.position, q.Hash(),
		q.Year, q.Board, q.Enunciation, q.ImageURL,
		q.ChoiceA, q.ChoiceB, q.ChoiceC, q.ChoiceD, q.ChoiceE, string(q.Type))
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		s.skipped++
		return nil
	}
	s.position++
	s.added++
	return nil
}

// Commit makes the staged questions permanent. Committing a store that
// saved nothing is a no-op.
func (s *QuestionStore) Commit() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	return err
}

// Abort discards the staged questions and the run record.
func (s *QuestionStore) Abort() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback()
	s.tx = nil
	s.added = 0
	s.skipped = 0
	return err
}

// QuestionService reads stored questions.
type QuestionService struct {
	db *DB
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(db *DB) *QuestionService {
	return &QuestionService{db: db}
}

// FindQuestions returns stored questions in crawl order: oldest run first,
// then the order questions were found in.
func (s *QuestionService) FindQuestions(ctx context.Context, filter qscrape.QuestionFilter) ([]*qscrape.Question, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT q.year, q.board, q.enunciation, q.image_url,
		q.choice_a, q.choice_b, q.choice_c, q.choice_d, q.choice_e, q.type
		FROM questions q JOIN runs r ON r.id = q.run_id WHERE 1=1`)

	if filter.SearchURL != nil {
		query.WriteString(" AND q.search_url = ?")
		args = append(args, *filter.SearchURL)
	}

	query.WriteString(" ORDER BY r.started_at ASC, q.position ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*qscrape.Question
	for rows.Next() {
		var q qscrape.Question
		var typ string
		if err := rows.Scan(&q.Year, &q.Board, &q.Enunciation, &q.ImageURL,
			&q.ChoiceA, &q.ChoiceB, &q.ChoiceC, &q.ChoiceD, &q.ChoiceE, &typ); err != nil {
			return nil, err
		}
		q.Type = qscrape.QuestionType(typ)
		questions = append(questions, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return questions, nil
}
