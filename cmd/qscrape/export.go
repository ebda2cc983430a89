package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/qscrape"
	"github.com/fwojciec/qscrape/config"
	"github.com/fwojciec/qscrape/fs"
	"github.com/fwojciec/qscrape/sqlite"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	cfg, err := deps.loadConfig()
	if err != nil {
		return err
	}

	path := c.DB
	if path == "" {
		path = cfg.DB
	}
	if path == "" {
		path = config.DefaultDBPath()
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: run 'qscrape crawl --db %s' first\n", path)
		return qscrape.Errorf(qscrape.ENOTFOUND, "database %s not found", path)
	}

	db := sqlite.NewDB(path)
	if err := db.Open(); err != nil {
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	defer db.Close()

	filter := qscrape.QuestionFilter{}
	if c.SearchURL != "" {
		filter.SearchURL = &c.SearchURL
	}
	questions, err := sqlite.NewQuestionService(db).FindQuestions(deps.Ctx, filter)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return qscrape.Errorf(qscrape.ENOTFOUND, "no data to export")
	}

	if err := saveAll(deps.Ctx, fs.NewCSVStore(c.Output), questions); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d questions to %s\n", len(questions), c.Output)
	return nil
}
