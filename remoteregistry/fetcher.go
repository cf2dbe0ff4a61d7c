package remoteregistry

import (
	"context"
	"errors"

	"github.com/skosovsky/genbridge"
)

var (
	// ErrFetchFailed wraps every transport-level failure of a Fetcher.
	ErrFetchFailed = errors.New("remoteregistry: fetch failed")
	// ErrHTTPStatus marks a response status other than 2xx or 404.
	ErrHTTPStatus = errors.New("remoteregistry: unexpected HTTP status")
	// ErrContentType marks a response whose media type cannot carry a YAML profile.
	ErrContentType = errors.New("remoteregistry: unexpected content type")
	// ErrNotFound means no candidate file exists; Registry reports it as genbridge.ErrProfileNotFound.
	ErrNotFound = errors.New("remoteregistry: no manifest found")
)

// Fetcher loads one model profile by name and environment.
//
// Implementations return ErrNotFound when no profile exists, genbridge.ErrInvalidManifest (wrapped)
// when one exists but does not parse, and ErrFetchFailed (wrapped) for anything else.
type Fetcher interface {
	Fetch(ctx context.Context, name, env string) (*genbridge.ModelConfig, error)
}
