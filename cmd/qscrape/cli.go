package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/qscrape/config"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Getenv     func(string) string
	Logger     *slog.Logger
	ConfigPath string
}

// loadConfig resolves defaults, the configuration file and the environment.
func (d *Dependencies) loadConfig() (config.Config, error) {
	return config.Load(d.ConfigPath, d.Getenv)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Enable debug logging"`
	Config  string `help:"Path to a YAML configuration file"`

	Crawl  CrawlCmd  `cmd:"" help:"Log in, crawl a search and export its questions"`
	Export ExportCmd `cmd:"" help:"Export questions stored by earlier crawls to CSV"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL       string        `arg:"" name:"search-url" help:"Search results URL"`
	Output    string        `short:"o" help:"CSV output path (default questions.csv)"`
	DB        string        `help:"Also store questions in this SQLite database"`
	BaseURL   string        `name:"base-url" help:"Site root used to locate the login form"`
	UserAgent string        `name:"user-agent" help:"User-Agent header sent with every request"`
	Browser   bool          `help:"Use a headless browser instead of plain HTTP"`
	Markdown  bool          `help:"Convert enunciations to Markdown"`
	MaxPages  int           `name:"max-pages" help:"Stop after this many result pages"`
	Timeout   time.Duration `help:"Timeout for a single request"`
	Deadline  time.Duration `help:"Timeout for the whole crawl"`
}

// apply overrides cfg with the flags that were set.
func (c *CrawlCmd) apply(cfg *config.Config) {
	if c.Output != "" {
		cfg.Output = c.Output
	}
	if c.DB != "" {
		cfg.DB = c.DB
	}
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	if c.UserAgent != "" {
		cfg.UserAgent = c.UserAgent
	}
	if c.MaxPages > 0 {
		cfg.MaxPages = c.MaxPages
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	if c.Deadline > 0 {
		cfg.Deadline = c.Deadline
	}
	cfg.Browser = cfg.Browser || c.Browser
	cfg.Markdown = cfg.Markdown || c.Markdown
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Output    string `arg:"" help:"CSV output path"`
	DB        string `help:"SQLite database path (default in the XDG data directory)"`
	SearchURL string `name:"search-url" help:"Only export questions from this search"`
}
