package remoteregistry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/skosovsky/genbridge"
	"github.com/skosovsky/genbridge/manifest"
)

var _ Fetcher = (*HTTPFetcher)(nil)

const (
	maxManifestSize  = 1 << 20
	defaultUserAgent = "genbridge-remote-registry/1.0"
)

// yamlMediaTypes are accepted in addition to an absent Content-Type header.
// Static file servers commonly label .yml as text/plain or application/octet-stream.
var yamlMediaTypes = []string{
	"application/yaml",
	"application/x-yaml",
	"text/yaml",
	"text/x-yaml",
	"text/plain",
	"application/octet-stream",
}

// HTTPFetcher serves profiles from a base URL laid out like a profile directory:
// each manifest.CandidateFiles entry is requested as {base}/{file} until one is not a 404.
// The body is parsed here, so a malformed profile fails the fetch and is never cached.
type HTTPFetcher struct {
	base   *url.URL
	client *http.Client
	token  string
	logger *slog.Logger
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client (30s timeout). A nil client is ignored.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPFetcher) {
		if c != nil {
			h.client = c
		}
	}
}

// WithAuthToken sends token as a Bearer credential on every request.
func WithAuthToken(token string) HTTPOption {
	return func(h *HTTPFetcher) {
		h.token = token
	}
}

// WithLogger sets the logger for per-candidate debug records. A nil logger is ignored.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(h *HTTPFetcher) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHTTPFetcher returns a fetcher rooted at baseURL, which must be an absolute http or https URL.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) (*HTTPFetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("remoteregistry: invalid base URL %q", baseURL)
	}
	h := &HTTPFetcher{
		base:   base,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Fetch returns the most specific profile for name and env.
func (h *HTTPFetcher) Fetch(ctx context.Context, name, env string) (*genbridge.ModelConfig, error) {
	if err := genbridge.ValidateName(name, env); err != nil {
		return nil, err
	}
	for _, file := range manifest.CandidateFiles(name, env) {
		u := h.base.JoinPath(file)
		data, err := h.get(ctx, u)
		if errors.Is(err, errMissing) {
			h.logger.DebugContext(ctx, "profile candidate missing", "url", u.Redacted())
			continue
		}
		if err != nil {
			return nil, err
		}
		cfg, err := manifest.ParseBytes(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", u.Redacted(), err)
		}
		h.logger.DebugContext(ctx, "profile fetched", "url", u.Redacted(), "model", cfg.ModelName)
		return cfg, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Close drops idle keep-alive connections held by the client.
func (h *HTTPFetcher) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

var errMissing = errors.New("missing")

func (h *HTTPFetcher) get(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/yaml, text/yaml;q=0.9, */*;q=0.1")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	resp, err := h.client.Do(req) // #nosec G107 -- base URL comes from config, file names are validated
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errMissing
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %w: %s %s", ErrFetchFailed, ErrHTTPStatus, resp.Status, u.Redacted())
	}
	if ct := resp.Header.Get("Content-Type"); !yamlContentType(ct) {
		return nil, fmt.Errorf("%w: %w: %q from %s", ErrFetchFailed, ErrContentType, ct, u.Redacted())
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetchFailed, err)
	}
	if len(data) > maxManifestSize {
		return nil, fmt.Errorf("%w: manifest exceeds %d bytes", ErrFetchFailed, maxManifestSize)
	}
	return data, nil
}

func yamlContentType(header string) bool {
	if header == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(header)
	return err == nil && slices.Contains(yamlMediaTypes, mediaType)
}
