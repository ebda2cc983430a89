package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fwojciec/qscrape"
	"github.com/fwojciec/qscrape/config"
	"github.com/fwojciec/qscrape/crawl"
	"github.com/fwojciec/qscrape/fs"
	"github.com/fwojciec/qscrape/goquery"
	"github.com/fwojciec/qscrape/htmltomarkdown"
	"github.com/fwojciec/qscrape/resty"
	"github.com/fwojciec/qscrape/rod"
	qslog "github.com/fwojciec/qscrape/slog"
	"github.com/fwojciec/qscrape/sqlite"
	"github.com/schollz/progressbar/v3"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	cfg, err := deps.loadConfig()
	if err != nil {
		return err
	}
	c.apply(&cfg)

	creds := cfg.Credentials()
	if err := creds.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: set %s and %s\n", config.EnvEmail, config.EnvPassword)
		return err
	}

	loginURL, err := cfg.LoginURL(goquery.LoginPath)
	if err != nil {
		return err
	}

	ctx := deps.Ctx
	if cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Deadline)
		defer cancel()
	}

	session, err := openSession(cfg, deps.Logger)
	if err != nil {
		if cfg.Browser {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
		}
		return err
	}
	defer session.Close()

	crawler := newCrawler(cfg, loginURL, session, deps.Logger)

	fmt.Fprintln(deps.Stdout, "Authenticating as", creds)
	bar := newProgress(deps)
	result, err := crawler.Crawl(ctx, c.URL, bar.update)
	if err != nil {
		return err
	}

	if result.Interrupted {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			deps.Logger.Warn("crawl deadline exceeded", "deadline", cfg.Deadline)
		} else {
			deps.Logger.Warn("execution ended by user")
		}
	}

	// Export even after an interrupt or deadline: what was collected is kept.
	exportCtx := context.WithoutCancel(ctx)
	exportErr := export(exportCtx, deps, cfg, c.URL, result.Questions)

	printErrors(deps, result.Errors)
	return exportErr
}

func openSession(cfg config.Config, logger *slog.Logger) (qscrape.Session, error) {
	var session qscrape.Session
	if cfg.Browser {
		opts := []rod.Option{rod.WithTimeout(cfg.Timeout)}
		if cfg.UserAgent != "" {
			opts = append(opts, rod.WithUserAgent(cfg.UserAgent))
		}
		s, err := rod.NewSession(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		session = s
	} else {
		opts := []resty.Option{resty.WithTimeout(cfg.Timeout), resty.WithLogger(logger)}
		if cfg.UserAgent != "" {
			opts = append(opts, resty.WithUserAgent(cfg.UserAgent))
		}
		s, err := resty.NewSession(opts...)
		if err != nil {
			return nil, err
		}
		session = s
	}
	return qslog.NewLoggingSession(session, logger), nil
}

func newCrawler(cfg config.Config, loginURL string, session qscrape.Session, logger *slog.Logger) *crawl.Crawler {
	var extractorOpts []goquery.ExtractorOption
	if cfg.Markdown {
		converter := htmltomarkdown.NewConverter(htmltomarkdown.WithDomain(cfg.BaseURL))
		extractorOpts = append(extractorOpts, goquery.WithConverter(converter))
	}

	return &crawl.Crawler{
		Session:       session,
		Authenticator: qslog.NewLoggingAuthenticator(goquery.NewAuthenticator(loginURL), logger),
		Credentials:   cfg.Credentials(),
		Inspector:     goquery.NewSearchInspector(),
		Extractor:     qslog.NewLoggingQuestionExtractor(goquery.NewQuestionExtractor(extractorOpts...), logger),
		Paginator:     goquery.NewPaginator(),
		MaxPages:      cfg.MaxPages,
	}
}

// export writes the questions to the CSV file and, when a database is
// configured, to SQLite. Returns ENOTFOUND when there is nothing to export.
func export(ctx context.Context, deps *Dependencies, cfg config.Config, searchURL string, questions []*qscrape.Question) error {
	if len(questions) == 0 {
		return qscrape.Errorf(qscrape.ENOTFOUND, "no data to export")
	}

	csv := fs.NewCSVStore(cfg.Output)
	if err := saveAll(ctx, csv, questions); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d questions to %s\n", csv.Len(), cfg.Output)

	if cfg.DB == "" {
		return nil
	}

	db, err := openDB(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	store := sqlite.NewQuestionStore(db, searchURL)
	if err := saveAll(ctx, store, questions); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Stored %d new questions in %s (%d already known)\n", store.Added(), cfg.DB, store.Skipped())
	deps.Logger.Info("stored run", "run_id", store.RunID(), "search_url", searchURL)
	return nil
}

// saveAll saves every question and commits, aborting on the first failure.
func saveAll(ctx context.Context, store qscrape.QuestionStore, questions []*qscrape.Question) error {
	for _, q := range questions {
		if err := store.Save(ctx, q); err != nil {
			_ = store.Abort()
			return err
		}
	}
	if err := store.Commit(); err != nil {
		_ = store.Abort()
		return err
	}
	return nil
}

func openDB(path string) (*sqlite.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db := sqlite.NewDB(path)
	if err := db.Open(); err != nil {
		return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	return db, nil
}

// printErrors prints the errors collected during the crawl.
func printErrors(deps *Dependencies, errs []error) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintln(deps.Stderr, "\nShowing errors:")
	for _, err := range errs {
		fmt.Fprintf(deps.Stderr, "-> %s\n", qscrape.ErrorMessage(err))
	}
}

// progress renders crawl progress. The bar is created once the first result
// page announced the number of questions.
type progress struct {
	deps *Dependencies
	bar  *progressbar.ProgressBar
}

func newProgress(deps *Dependencies) *progress {
	return &progress{deps: deps}
}

func (p *progress) update(event crawl.ProgressEvent) {
	switch event.Type {
	case crawl.ProgressAuthenticated:
		fmt.Fprintln(p.deps.Stdout, "Authenticated")
	case crawl.ProgressCounted:
		fmt.Fprintf(p.deps.Stdout, "%d questions found\n", event.Total)
		p.bar = progressbar.NewOptions(event.Total,
			progressbar.OptionSetWriter(p.deps.Stderr),
			progressbar.OptionSetDescription("questions"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
		)
	case crawl.ProgressPage:
		p.deps.Logger.Debug("page", "page", event.Page, "url", event.URL, "questions", event.Questions)
		if p.bar == nil {
			return
		}
		if event.Questions > event.Total {
			p.bar.ChangeMax(event.Questions)
		}
		_ = p.bar.Set(event.Questions)
	case crawl.ProgressFinished:
		p.finish()
		fmt.Fprintf(p.deps.Stdout, "Collected %d questions from %d pages\n", event.Questions, event.Page)
	}
}

func (p *progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(p.deps.Stderr)
		p.bar = nil
	}
}
