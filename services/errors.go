package services

import (
	"errors"
	"fmt"

	"github.com/docuchat/server/models"
)

// Sentinel errors for the failure taxonomy. Everything the service layer can
// fail with is one of these (or wraps one of these), so controllers only
// ever translate errors into {success:false, error} payloads.
var (
	// ErrUnsupportedKind means the caller asked for a content kind outside
	// pdf/image/url/text. Fatal to the request, never retried.
	ErrUnsupportedKind = errors.New("unsupported content kind")

	// ErrSessionNotFound means the supplied session token is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrQuotaExhausted is how the search collaborator reports rate or
	// resource exhaustion. The fallback orchestrator branches on it to pick
	// the quota message over the generic one.
	ErrQuotaExhausted = errors.New("search quota exhausted")
)

// ExtractionError wraps a failure from one of the underlying extractors
// (PDF parser, vision model, web fetcher) together with the content kind
// that was being normalized.
type ExtractionError struct {
	Kind models.SourceKind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for kind %q: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IsExtractionError reports whether err is (or wraps) an ExtractionError.
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}
