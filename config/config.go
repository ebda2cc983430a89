// Package config resolves qscrape settings from defaults, an optional YAML
// file and environment variables. Command-line flags are applied last by the
// CLI, giving the precedence flags > environment > file > defaults.
package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/fwojciec/qscrape"
	"gopkg.in/yaml.v3"
)

// AppName is the application name used for XDG directory paths.
const AppName = "qscrape"

// Defaults.
const (
	DefaultBaseURL    = "https://www.qconcursos.com"
	DefaultOutput     = "questions.csv"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxPages   = 1000
	DefaultConfigFile = ".qscrape.yaml"
)

// Environment variables.
const (
	EnvEmail    = "QSCRAPE_EMAIL"
	EnvPassword = "QSCRAPE_PASSWORD"
	EnvBaseURL  = "QSCRAPE_BASE_URL"
	EnvDB       = "QSCRAPE_DB"
	EnvMaxPages = "QSCRAPE_MAX_PAGES"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config holds resolved settings.
type Config struct {
	BaseURL   string
	Email     string
	Password  string
	Output    string
	DB        string
	UserAgent string
	MaxPages  int
	Timeout   time.Duration
	Deadline  time.Duration
	Browser   bool
	Markdown  bool
}

// File is the YAML configuration file. The password is deliberately not
// part of it: it is read from the environment only.
type File struct {
	BaseURL   string        `yaml:"base_url"`
	Email     string        `yaml:"email"`
	Output    string        `yaml:"output"`
	DB        string        `yaml:"db"`
	UserAgent string        `yaml:"user_agent"`
	MaxPages  int           `yaml:"max_pages"`
	Timeout   time.Duration `yaml:"timeout"`
	Deadline  time.Duration `yaml:"deadline"`
	Browser   bool          `yaml:"browser"`
	Markdown  bool          `yaml:"markdown"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		Output:   DefaultOutput,
		MaxPages: DefaultMaxPages,
		Timeout:  DefaultTimeout,
	}
}

// ApplyFile overrides c with the values set in f.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	setString(&c.BaseURL, f.BaseURL)
	setString(&c.Email, f.Email)
	setString(&c.Output, f.Output)
	setString(&c.DB, f.DB)
	setString(&c.UserAgent, f.UserAgent)
	if f.MaxPages > 0 {
		c.MaxPages = f.MaxPages
	}
	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.Deadline > 0 {
		c.Deadline = f.Deadline
	}
	c.Browser = c.Browser || f.Browser
	c.Markdown = c.Markdown || f.Markdown
}

// ApplyEnv overrides c with the environment variables that are set.
// getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString(&c.Email, getenv(EnvEmail))
	setString(&c.Password, getenv(EnvPassword))
	setString(&c.BaseURL, getenv(EnvBaseURL))
	setString(&c.DB, getenv(EnvDB))
	if v := getenv(EnvMaxPages); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return qscrape.Errorf(qscrape.EINVALID, "%s must be a positive integer, got %q", EnvMaxPages, v)
		}
		c.MaxPages = n
	}
	return nil
}

// Credentials returns the login identity.
func (c Config) Credentials() qscrape.Credentials {
	return qscrape.Credentials{Email: c.Email, Password: c.Password}
}

// LoginURL returns the absolute URL of the login form.
func (c Config) LoginURL(loginPath string) (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", qscrape.Errorf(qscrape.EINVALID, "invalid base URL %q", c.BaseURL)
	}
	ref, err := url.Parse(loginPath)
	if err != nil {
		return "", qscrape.Errorf(qscrape.EINVALID, "invalid login path %q", loginPath)
	}
	return base.ResolveReference(ref).String(), nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// LoadFile loads the YAML configuration file at path.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, qscrape.Errorf(qscrape.EINVALID, "invalid config file %s: %v", path, err)
	}
	return &f, nil
}

// FindFile searches for the configuration file in the following order:
//  1. configPath, if specified
//  2. .qscrape.yaml in the current directory
//  3. qscrape/config.yaml in the XDG config directory
//
// Returns the path if found, or an empty string.
func FindFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}

	return ""
}

// ConfigDir returns the XDG configuration directory for qscrape.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultDBPath returns the default SQLite database path in the XDG data
// directory.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, "questions.db")
}

// Load resolves defaults, the configuration file and the environment.
// An explicit configPath that does not exist is an error; a missing
// default file is not.
func Load(configPath string, getenv func(string) string) (Config, error) {
	cfg := Default()

	path := FindFile(configPath)
	if configPath != "" && path == "" {
		return cfg, qscrape.Errorf(qscrape.ENOTFOUND, "config file %s not found", configPath)
	}
	if path != "" {
		f, err := LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg.ApplyFile(f)
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}
