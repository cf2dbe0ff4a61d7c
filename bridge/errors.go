package bridge

import (
	"context"
	"errors"

	"github.com/skosovsky/genbridge"
)

// Sentinel errors originated by the bridge.
var (
	ErrUnknownHandle   = errors.New("bridge: unknown session handle")
	ErrInvalidArgument = errors.New("bridge: invalid argument")
	ErrClosed          = errors.New("bridge: closed")
)

// Error codes returned by ErrorCode.
const (
	CodeNotInitialized     = "NOT_INITIALIZED"
	CodeChatNotInitialized = "CHAT_NOT_INITIALIZED"
	CodeUnknownHandle      = "UNKNOWN_HANDLE"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeCancelled          = "CANCELLED"
	CodeSDKError           = "SDK_ERROR"
)

// ErrorCode classifies err for the host. It returns "" for nil and CodeSDKError for anything
// the bridge and genbridge did not originate.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, genbridge.ErrNotInitialized):
		return CodeNotInitialized
	case errors.Is(err, genbridge.ErrChatNotInitialized):
		return CodeChatNotInitialized
	case errors.Is(err, ErrUnknownHandle), errors.Is(err, ErrClosed):
		return CodeUnknownHandle
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, genbridge.ErrInvalidImage):
		return CodeInvalidArgument
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	default:
		return CodeSDKError
	}
}
