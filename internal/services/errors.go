package services

import (
	"errors"
	"fmt"
	"strings"
)

// Failure markers. Every error surfaced by the pipeline wraps exactly one of
// these so callers can classify it with errors.Is.
var (
	ErrTransport         = errors.New("transport failure")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrDriveIO           = errors.New("drive i/o failure")
	ErrLocalIO           = errors.New("local i/o failure")
	ErrEncoding          = errors.New("encoding failure")
	ErrConfiguration     = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrLocalIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the short label of the marker wrapped by err, or "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDriveIO):
		return "drive_io"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrLocalIO):
		return "local_io"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
