// Package mediafetch downloads images over HTTPS and returns them as genbridge.ImageBlob values
// (base64 data plus MIME type), ready to pass to WithImages.
package mediafetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/skosovsky/genbridge"
	"github.com/skosovsky/genbridge/internal/media"
)

// DefaultMaxBodySize is the default download limit; it matches the decode limit of a Session.
const DefaultMaxBodySize = media.DefaultMaxSize

var (
	// ErrUnsafeScheme is returned when the URL scheme is not https.
	ErrUnsafeScheme = errors.New("mediafetch: only https scheme is allowed")
	// ErrBodyTooLarge is returned when the response exceeds the size limit.
	ErrBodyTooLarge = errors.New("mediafetch: response body exceeds size limit")
	// ErrUnsupportedType is returned when Content-Type is set and is not image/*.
	ErrUnsupportedType = errors.New("mediafetch: unsupported content type")
	// ErrStatus is returned for any response other than 200 OK.
	ErrStatus = errors.New("mediafetch: unexpected HTTP status")
)

// Fetcher downloads images. The zero value is not usable; create one with New.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client. A nil client is ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithMaxBytes sets the download limit. Values <= 0 use DefaultMaxBodySize.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// New returns a Fetcher using http.DefaultClient and DefaultMaxBodySize unless overridden.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{client: http.DefaultClient, maxBytes: DefaultMaxBodySize}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Image downloads rawURL and returns it as an ImageBlob. A missing Content-Type falls back to
// media.DefaultMIMEType.
func (f *Fetcher) Image(ctx context.Context, rawURL string) (genbridge.ImageBlob, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return genbridge.ImageBlob{}, fmt.Errorf("mediafetch: parse URL: %w", err)
	}
	if u.Scheme != "https" {
		return genbridge.ImageBlob{}, ErrUnsafeScheme
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return genbridge.ImageBlob{}, fmt.Errorf("mediafetch: new request: %w", err)
	}
	resp, err := f.client.Do(req) // #nosec G704 -- scheme restricted to https above
	if err != nil {
		return genbridge.ImageBlob{}, fmt.Errorf("mediafetch: do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return genbridge.ImageBlob{}, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	contentType, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	contentType = strings.TrimSpace(contentType)
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return genbridge.ImageBlob{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if contentType == "" {
		contentType = media.DefaultMIMEType
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return genbridge.ImageBlob{}, fmt.Errorf("mediafetch: read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return genbridge.ImageBlob{}, ErrBodyTooLarge
	}
	return genbridge.ImageBlob{MIMEType: contentType, Data: media.Encode(data)}, nil
}
