package resty_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/fwojciec/qscrape"
	"github.com/fwojciec/qscrape/resty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, opts ...resty.Option) *resty.Session {
	t.Helper()
	s, err := resty.NewSession(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSession_Get(t *testing.T) {
	t.Parallel()

	t.Run("returns body and URL", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Olá</body></html>"))
		}))
		defer server.Close()

		page, err := newSession(t).Get(context.Background(), server.URL+"/questoes")

		require.NoError(t, err)
		assert.Equal(t, "<html><body>Olá</body></html>", page.HTML)
		assert.Equal(t, server.URL+"/questoes", page.URL)
	})

	t.Run("sends the default user agent", func(t *testing.T) {
		t.Parallel()

		var ua string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.UserAgent()
		}))
		defer server.Close()

		_, err := newSession(t).Get(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, resty.DefaultUserAgent, ua)
	})

	t.Run("sends a custom user agent", func(t *testing.T) {
		t.Parallel()

		var ua string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.UserAgent()
		}))
		defer server.Close()

		_, err := newSession(t, resty.WithUserAgent("qscrape-test")).Get(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "qscrape-test", ua)
	})

	t.Run("reports the final URL after redirects", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusFound)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("new"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		page, err := newSession(t).Get(context.Background(), server.URL+"/old")

		require.NoError(t, err)
		assert.Equal(t, server.URL+"/new", page.URL)
		assert.Equal(t, "new", page.HTML)
	})

	t.Run("returns EFETCH for error status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := newSession(t).Get(context.Background(), server.URL)

		assert.Equal(t, qscrape.EFETCH, qscrape.ErrorCode(err))
	})

	t.Run("returns EFETCH when the request times out", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		_, err := newSession(t, resty.WithTimeout(10*time.Millisecond)).Get(context.Background(), server.URL)

		assert.Equal(t, qscrape.EFETCH, qscrape.ErrorCode(err))
	})

	t.Run("returns EFETCH when the context is canceled", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newSession(t).Get(ctx, server.URL)

		assert.Equal(t, qscrape.EFETCH, qscrape.ErrorCode(err))
	})
}

func TestSession_PostForm(t *testing.T) {
	t.Parallel()

	t.Run("submits form values url-encoded", func(t *testing.T) {
		t.Parallel()

		var got url.Values
		var contentType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			_ = r.ParseForm()
			got = r.PostForm
		}))
		defer server.Close()

		form := url.Values{"authenticity_token": {"abc123"}, "user[email]": {"user@example.com"}}
		_, err := newSession(t).PostForm(context.Background(), server.URL, form)

		require.NoError(t, err)
		assert.Contains(t, contentType, "application/x-www-form-urlencoded")
		assert.Equal(t, "abc123", got.Get("authenticity_token"))
		assert.Equal(t, "user@example.com", got.Get("user[email]"))
	})

	t.Run("keeps cookies across requests", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/conta/entrar", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				http.SetCookie(w, &http.Cookie{Name: "_session", Value: "anon", Path: "/"})
				_, _ = w.Write([]byte("login"))
				return
			}
			if c, err := r.Cookie("_session"); err != nil || c.Value != "anon" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "_session", Value: "user", Path: "/"})
			http.Redirect(w, r, "/usuario/dashboard", http.StatusFound)
		})
		mux.HandleFunc("/usuario/dashboard", func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie("_session")
			if err != nil || c.Value != "user" {
				http.Redirect(w, r, "/conta/entrar", http.StatusFound)
				return
			}
			_, _ = w.Write([]byte("dashboard"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		s := newSession(t)
		_, err := s.Get(context.Background(), server.URL+"/conta/entrar")
		require.NoError(t, err)

		page, err := s.PostForm(context.Background(), server.URL+"/conta/entrar", url.Values{"commit": {"Entrar"}})

		require.NoError(t, err)
		assert.Equal(t, server.URL+"/usuario/dashboard", page.URL)
		assert.Equal(t, "dashboard", page.HTML)
	})

	t.Run("returns client error pages for the caller to inspect", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte("invalid login"))
		}))
		defer server.Close()

		page, err := newSession(t).PostForm(context.Background(), server.URL+"/conta/entrar", url.Values{})

		require.NoError(t, err)
		assert.Equal(t, server.URL+"/conta/entrar", page.URL)
		assert.Equal(t, "invalid login", page.HTML)
	})

	t.Run("returns EFETCH for server errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := newSession(t).PostForm(context.Background(), server.URL, url.Values{})

		assert.Equal(t, qscrape.EFETCH, qscrape.ErrorCode(err))
	})
}
