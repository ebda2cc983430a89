package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/qscrape"
	main "github.com/fwojciec/qscrape/cmd/qscrape"
	"github.com/fwojciec/qscrape/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginForm = `<!DOCTYPE html><html><body>
<form action="/conta/entrar" method="post">
<input type="hidden" name="authenticity_token" value="abc123">
</form></body></html>`

const resultsPage = `<!DOCTYPE html><html><body>
<h2 class="q-page-results-title">Encontramos <strong>2</strong> questões</h2>
<div class="q-question-item">
	<div class="q-question-info"><span>Ano: 2019</span><span>Banca: CESPE</span></div>
	<div class="q-question-enunciation">A Terra é plana.</div>
	<ul class="q-question-options">
		<li><div class="q-item-enum">Certo</div></li>
		<li><div class="q-item-enum">Errado</div></li>
	</ul>
</div>
<div class="q-question-item">
	<div class="q-question-info"><span>Ano: 2020</span><span>Banca: FCC</span></div>
	<div class="q-question-enunciation">Quanto é 2 + 2?</div>
	<ul class="q-question-options">
		<li><div class="q-item-enum">1</div></li>
		<li><div class="q-item-enum">2</div></li>
		<li><div class="q-item-enum">3</div></li>
		<li><div class="q-item-enum">4</div></li>
	</ul>
</div>
</body></html>`

const emptyPage = `<html><body><div class="alert-empty-search">Nenhuma questão</div></body></html>`

// pagedResultsPage is resultsPage with a next link to page 2.
var pagedResultsPage = strings.Replace(resultsPage, "</body>",
	`<nav class="js-pagination"><a rel="next" href="/questoes?page=2">Próxima</a></nav></body>`, 1)

// newQuestionSite serves a login form that accepts token abc123 with the
// password "secret", and a single-page search behind the session cookie.
func newQuestionSite(t *testing.T, searchHTML string) *httptest.Server {
	t.Helper()

	return newPagedQuestionSite(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchHTML))
	})
}

// newPagedQuestionSite is newQuestionSite with a custom handler for the
// search pages.
func newPagedQuestionSite(t *testing.T, search http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/conta/entrar", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(loginForm))
			return
		}
		_ = r.ParseForm()
		if r.PostForm.Get("authenticity_token") != "abc123" || r.PostForm.Get("user[password]") != "secret" {
			_, _ = w.Write([]byte(loginForm))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "_session", Value: "user", Path: "/"})
		http.Redirect(w, r, "/usuario/dashboard", http.StatusFound)
	})
	mux.HandleFunc("/usuario/dashboard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>Painel</body></html>"))
	})
	mux.HandleFunc("/questoes", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("_session")
		if err != nil || c.Value != "user" {
			http.Redirect(w, r, "/conta/entrar", http.StatusFound)
			return
		}
		search(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// writeConfig writes a config file pointing at baseURL and returns its path.
func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "base_url: " + baseURL + "\nemail: user@example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestCrawlCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("crawls the search and writes the CSV", func(t *testing.T) {
		t.Parallel()

		server := newQuestionSite(t, resultsPage)
		output := filepath.Join(t.TempDir(), "questions.csv")

		m := main.NewMain()
		m.Getenv = env(map[string]string{config.EnvPassword: "secret"})
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{
			"--config", writeConfig(t, server.URL),
			"crawl", server.URL + "/questoes?ano=2019", "-o", output,
		}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "2 questions found")
		assert.Contains(t, stdout.String(), "Wrote 2 questions to "+output)
		assert.NotContains(t, stderr.String(), "Showing errors:")

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "ano,banca,enunciation,image,choice_a,choice_b,choice_c,choice_d,choice_e,type", lines[0])
		assert.Equal(t, "2019,CESPE,A Terra é plana.,,,,,,,true-false", lines[1])
		assert.Equal(t, "2020,FCC,Quanto é 2 + 2?,,1,2,3,4,,multiple", lines[2])
	})

	t.Run("stores questions in SQLite and exports them again", func(t *testing.T) {
		t.Parallel()

		server := newQuestionSite(t, resultsPage)
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "data", "questions.db")
		cfgPath := writeConfig(t, server.URL)
		searchURL := server.URL + "/questoes"

		m := main.NewMain()
		m.Getenv = env(map[string]string{config.EnvPassword: "secret"})
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{
			"--config", cfgPath,
			"crawl", searchURL, "-o", filepath.Join(dir, "crawl.csv"), "--db", dbPath,
		}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Stored 2 new questions")
		assert.Contains(t, stderr.String(), "run_id=")

		stdout.Reset()
		exported := filepath.Join(dir, "export.csv")
		err = m.Run(context.Background(), []string{
			"--config", cfgPath,
			"export", exported, "--db", dbPath, "--search-url", searchURL,
		}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Wrote 2 questions")

		crawled, err := os.ReadFile(filepath.Join(dir, "crawl.csv"))
		require.NoError(t, err)
		data, err := os.ReadFile(exported)
		require.NoError(t, err)
		assert.Equal(t, string(crawled), string(data))
	})

	t.Run("a second crawl of the same search stores nothing new", func(t *testing.T) {
		t.Parallel()

		server := newQuestionSite(t, resultsPage)
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "questions.db")
		args := []string{
			"--config", writeConfig(t, server.URL),
			"crawl", server.URL + "/questoes", "-o", filepath.Join(dir, "q.csv"), "--db", dbPath,
		}

		m := main.NewMain()
		m.Getenv = env(map[string]string{config.EnvPassword: "secret"})
		var stdout, stderr bytes.Buffer

		require.NoError(t, m.Run(context.Background(), args, &stdout, &stderr))
		stdout.Reset()
		require.NoError(t, m.Run(context.Background(), args, &stdout, &stderr))

		assert.Contains(t, stdout.String(), "Stored 0 new questions")
		assert.Contains(t, stdout.String(), "(2 already known)")
	})

	t.Run("interrupt exports the questions collected so far", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		server := newPagedQuestionSite(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") != "2" {
				_, _ = w.Write([]byte(pagedResultsPage))
				return
			}
			cancel()
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})
		output := filepath.Join(t.TempDir(), "questions.csv")

		m := main.NewMain()
		m.Getenv = env(map[string]string{config.EnvPassword: "secret"})
		var stdout, stderr bytes.Buffer

		err := m.Run(ctx, []string{
			"--config", writeConfig(t, server.URL),
			"crawl", server.URL + "/questoes", "-o", output,
		}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "execution ended by user")
		assert.NotContains(t, stderr.String(), "deadline")

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[1], "2019,CESPE,"))
		assert.True(t, strings.HasPrefix(lines[2], "2020,FCC,"))
	})

	t.Run("expired deadline is reported as such", func(t *testing.T) {
		t.Parallel()

		server := newPagedQuestionSite(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})
		output := filepath.Join(t.TempDir(), "questions.csv")

		m := main.NewMain()
		m.Getenv = env(map[string]string{config.EnvPassword: "secret"})
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{
			"--config", writeConfig(t, server.URL),
			"crawl", server.URL + "/questoes", "-o", output, "--deadline", "300ms",
		}, &stdout, &stderr)

		require.Error(t, err)
		assert.Equal(t, "no data to export", qscrape.ErrorMessage(err))
		assert.Contains(t, stderr.String(), "crawl deadline exceeded")
		assert.NotContains(t, stderr.String(), "execution ended by user")
	})

	t.Run("empty search still prints the result count", func(t *testing.T) {
		t.Parallel()

		server := newQuestionSite(t, emptyPage)

		m := main.NewMain()
		m.Getenv = env(map[string]string{config.EnvPassword: "secret"})
		var stdout, stderr bytes.Buffer

		_ = m.Run(context.Background(), []string{
			"--config", writeConfig(t, server.URL),
			"crawl", server.URL + "/questoes", "-o", filepath.Join(t.TempDir(), "q.csv"),
		}, &stdout, &stderr)

		assert.Contains(t, stdout.String(), "1 questions found")
	})

	t.Run("wrong password prints the errors and exports nothing", func(t *testing.T) {
		t.Parallel()

		server := newQuestionSite(t, resultsPage)
		output := filepath.Join(t.TempDir(), "questions.csv")

		m := main.NewMain()
		m.Getenv = env(map[string]string{config.EnvPassword: "wrong"})
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{
			"--config", writeConfig(t, server.URL),
			"crawl", server.URL + "/questoes", "-o", output,
		}, &stdout, &stderr)

		require.Error(t, err)
		assert.Equal(t, qscrape.ENOTFOUND, qscrape.ErrorCode(err))
		assert.Equal(t, "no data to export", qscrape.ErrorMessage(err))
		assert.Contains(t, stderr.String(), "Showing errors:")
		assert.Contains(t, stderr.String(), "-> not authenticated")
		assert.NoFileExists(t, output)
	})

	t.Run("empty search reports the search and exports nothing", func(t *testing.T) {
		t.Parallel()

		server := newQuestionSite(t, emptyPage)
		output := filepath.Join(t.TempDir(), "questions.csv")

		m := main.NewMain()
		m.Getenv = env(map[string]string{config.EnvPassword: "secret"})
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{
			"--config", writeConfig(t, server.URL),
			"crawl", server.URL + "/questoes", "-o", output,
		}, &stdout, &stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "has no questions")
		assert.NoFileExists(t, output)
	})

	t.Run("missing password is rejected before any request", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		}))
		t.Cleanup(server.Close)

		m := main.NewMain()
		m.Getenv = env(nil)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{
			"--config", writeConfig(t, server.URL),
			"crawl", server.URL + "/questoes",
		}, &stdout, &stderr)

		require.Error(t, err)
		assert.Equal(t, qscrape.EINVALID, qscrape.ErrorCode(err))
		assert.Contains(t, stderr.String(), config.EnvPassword)
		assert.Zero(t, requests.Load())
	})

	t.Run("explicit config file must exist", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.Getenv = env(nil)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{
			"--config", filepath.Join(t.TempDir(), "missing.yaml"),
			"crawl", "https://example.com/questoes",
		}, &stdout, &stderr)

		require.Error(t, err)
		assert.Equal(t, qscrape.ENOTFOUND, qscrape.ErrorCode(err))
	})
}

func TestExportCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("missing database is reported", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		m := main.NewMain()
		m.Getenv = env(nil)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{
			"export", filepath.Join(dir, "out.csv"), "--db", filepath.Join(dir, "none.db"),
		}, &stdout, &stderr)

		require.Error(t, err)
		assert.Equal(t, qscrape.ENOTFOUND, qscrape.ErrorCode(err))
		assert.Contains(t, stderr.String(), "Hint:")
	})
}
