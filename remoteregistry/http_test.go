package remoteregistry

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/skosovsky/genbridge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseProfile = `
id: assistant
model: gemini-2.0-flash
generation:
  temperature: 0.4
safety:
  HARASSMENT: MEDIUM_AND_ABOVE
`

func serveYAML(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(body))
	}
}

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profiles/assistant.yaml", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "genbridge-remote-registry")
		assert.Contains(t, r.Header.Get("Accept"), "application/yaml")
		serveYAML(baseProfile)(w, r)
	}))
	defer srv.Close()

	h, err := NewHTTPFetcher(srv.URL + "/profiles")
	require.NoError(t, err)
	cfg, err := h.Fetch(context.Background(), "assistant", "")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", cfg.ModelName)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.4, *cfg.Temperature, 1e-9)
	assert.Equal(t, []genbridge.SafetySetting{
		{Category: genbridge.HarmCategoryHarassment, Level: genbridge.BlockMediumAndAbove},
	}, cfg.SafetySettings)
	assert.Empty(t, cfg.APIKey)
}

func TestHTTPFetcher_Fetch_CandidateOrder(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path != "/assistant.yml" {
			http.NotFound(w, r)
			return
		}
		serveYAML(baseProfile)(w, r)
	}))
	defer srv.Close()

	h, err := NewHTTPFetcher(srv.URL + "/")
	require.NoError(t, err)
	_, err = h.Fetch(context.Background(), "assistant", "staging")
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"/assistant.staging.yaml", "/assistant.staging.yml", "/assistant.yaml", "/assistant.yml",
	}, paths)
}

func TestHTTPFetcher_Fetch_BearerAuth(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		serveYAML(baseProfile)(w, r)
	}))
	defer srv.Close()

	h, err := NewHTTPFetcher(srv.URL, WithAuthToken("secret-token"))
	require.NoError(t, err)
	_, err = h.Fetch(context.Background(), "assistant", "")
	require.NoError(t, err)

	anon, err := NewHTTPFetcher(srv.URL)
	require.NoError(t, err)
	_, err = anon.Fetch(context.Background(), "assistant", "")
	require.ErrorIs(t, err, ErrHTTPStatus)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestHTTPFetcher_Fetch_NotFound(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	h, err := NewHTTPFetcher(srv.URL)
	require.NoError(t, err)
	_, err = h.Fetch(context.Background(), "nonexistent", "prod")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = New(h).GetProfile(context.Background(), "nonexistent", "prod")
	assert.ErrorIs(t, err, genbridge.ErrProfileNotFound)
}

func TestHTTPFetcher_Fetch_ContentType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		contentType string
		ok          bool
	}{
		{"application/yaml", true},
		{"application/x-yaml; charset=utf-8", true},
		{"text/yaml", true},
		{"text/plain; charset=utf-8", true},
		{"application/octet-stream", true},
		{"text/html; charset=utf-8", false},
		{"application/json", false},
		{"not a media type;;", false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte(baseProfile))
			}))
			defer srv.Close()

			h, err := NewHTTPFetcher(srv.URL)
			require.NoError(t, err)
			_, err = h.Fetch(context.Background(), "assistant", "")
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrContentType)
			assert.ErrorIs(t, err, ErrFetchFailed)
		})
	}
}

func TestHTTPFetcher_Fetch_HTMLLoginPageRejected(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>Sign in</body></html>"))
	}))
	defer srv.Close()

	h, err := NewHTTPFetcher(srv.URL)
	require.NoError(t, err)
	_, err = h.Fetch(context.Background(), "assistant", "")
	assert.ErrorIs(t, err, ErrContentType, "sniffed text/html must not reach the YAML parser")
}

func TestHTTPFetcher_Fetch_InvalidManifest(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(serveYAML("id: bad\ngeneration:\n  temperature: 0.1\n"))
	defer srv.Close()

	h, err := NewHTTPFetcher(srv.URL)
	require.NoError(t, err)
	_, err = h.Fetch(context.Background(), "bad", "")
	require.ErrorIs(t, err, genbridge.ErrInvalidManifest)
	assert.Contains(t, err.Error(), "/bad.yaml")
}

func TestHTTPFetcher_Fetch_HTTPError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	h, err := NewHTTPFetcher(srv.URL)
	require.NoError(t, err)
	_, err = h.Fetch(context.Background(), "x", "")
	require.ErrorIs(t, err, ErrHTTPStatus)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestNewHTTPFetcher_InvalidURL(t *testing.T) {
	t.Parallel()
	for _, u := range []string{"", "://invalid", "no-scheme", "ftp://host/profiles", "http://"} {
		_, err := NewHTTPFetcher(u)
		assert.Error(t, err, u)
	}
}

func TestHTTPFetcher_Fetch_InvalidName(t *testing.T) {
	t.Parallel()
	h, err := NewHTTPFetcher("http://127.0.0.1:1")
	require.NoError(t, err)
	_, err = h.Fetch(context.Background(), "../etc", "")
	assert.ErrorIs(t, err, genbridge.ErrInvalidName)
}

func TestHTTPFetcher_Fetch_BodyTooLarge(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(serveYAML(strings.Repeat("#", maxManifestSize+1)))
	defer srv.Close()

	h, err := NewHTTPFetcher(srv.URL)
	require.NoError(t, err)
	_, err = h.Fetch(context.Background(), "large", "")
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestHTTPFetcher_WithHTTPClient(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(serveYAML(baseProfile))
	defer srv.Close()

	h, err := NewHTTPFetcher(srv.URL, WithHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	require.NoError(t, err)
	_, err = h.Fetch(context.Background(), "assistant", "")
	require.NoError(t, err)

	// nil keeps the default client.
	h2, err := NewHTTPFetcher(srv.URL, WithHTTPClient(nil))
	require.NoError(t, err)
	_, err = h2.Fetch(context.Background(), "assistant", "")
	require.NoError(t, err)
}

func TestHTTPFetcher_Fetch_ContextCancellation(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)
	h, err := NewHTTPFetcher(srv.URL)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Fetch(ctx, "x", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_Close_ReleasesHTTPConnections(t *testing.T) {
	t.Parallel()
	closed := make(chan struct{}, 1)
	srv := httptest.NewUnstartedServer(serveYAML(baseProfile))
	srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateClosed {
			select {
			case closed <- struct{}{}:
			default:
			}
		}
	}
	srv.Start()
	defer srv.Close()

	h, err := NewHTTPFetcher(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	reg := New(h)
	_, err = reg.GetProfile(context.Background(), "assistant", "")
	require.NoError(t, err)

	// The transport returns the connection to its idle pool asynchronously after the body is read.
	require.Eventually(t, func() bool {
		assert.NoError(t, reg.Close())
		select {
		case <-closed:
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond, "idle keep-alive connection was not closed")
}
