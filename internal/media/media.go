// Package media decodes base64 media payloads received from host bridges into raw bytes.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultMaxSize is the default limit for one decoded payload (20 MiB, the inline request limit).
	DefaultMaxSize = 20 << 20
	// DefaultMIMEType is used when neither the blob nor a data URL names a MIME type.
	DefaultMIMEType = "image/png"
)

var (
	// ErrEmptyData is returned when the payload is empty after trimming.
	ErrEmptyData = errors.New("media: data is empty")
	// ErrMalformedBase64 is returned when the payload is not valid base64 in any accepted alphabet.
	ErrMalformedBase64 = errors.New("media: data is not valid base64")
	// ErrTooLarge is returned when the decoded payload exceeds the size limit.
	ErrTooLarge = errors.New("media: decoded data exceeds size limit")
	// ErrMalformedDataURL is returned when a data: URL lacks the ";base64," marker.
	ErrMalformedDataURL = errors.New("media: data URL must be base64-encoded")
)

// encodings are tried in order; hosts disagree on padding and alphabet.
var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Decode returns the bytes and MIME type of a base64 payload.
// data may be a bare base64 string or a "data:<mime>;base64,<payload>" URL; the URL's MIME type
// is used only when mimeType is empty. maxBytes <= 0 means DefaultMaxSize.
func Decode(mimeType, data string, maxBytes int) ([]byte, string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxSize
	}
	payload := strings.TrimSpace(data)
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", ErrMalformedDataURL
		}
		urlMIME, isBase64 := strings.CutSuffix(header, ";base64")
		if !isBase64 {
			return nil, "", ErrMalformedDataURL
		}
		if mimeType == "" {
			mimeType = urlMIME
		}
		payload = body
	}
	if payload == "" {
		return nil, "", ErrEmptyData
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return nil, "", ErrTooLarge
	}
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	var lastErr error
	for _, enc := range encodings {
		out, err := enc.DecodeString(payload)
		if err == nil {
			if len(out) > maxBytes {
				return nil, "", ErrTooLarge
			}
			return out, mimeType, nil
		}
		lastErr = err
	}
	return nil, "", fmt.Errorf("%w: %w", ErrMalformedBase64, lastErr)
}

// Encode returns the standard base64 form used when handing inline data back to a host.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
