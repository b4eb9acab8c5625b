package genai

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/openai/openai-go"
)

// Kind classifies a generation failure. The invoker uses it to decide
// whether a retry can help and whether the credential pool should hear
// about the failure.
type Kind string

const (
	// KindTransport covers connectivity problems and upstream timeouts.
	KindTransport Kind = "transport"

	// KindQuota means the current credential is rate limited or out of
	// quota. Retryable, and counts against the credential.
	KindQuota Kind = "quota"

	// KindAuth means the credential was rejected. A different credential
	// may still succeed, so the failure is retryable after rotation.
	KindAuth Kind = "auth"

	// KindInvalidResponse means the service answered with empty or
	// malformed output. Usually transient.
	KindInvalidResponse Kind = "invalid_response"

	// KindDocumentTooLarge and KindEmptyDocument are caller input errors.
	// They fail fast: no retry, no credential involvement.
	KindDocumentTooLarge Kind = "document_too_large"
	KindEmptyDocument    Kind = "empty_document"
)

// Error is a classified generation failure.
type Error struct {
	Kind      Kind
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a classification. Retryability follows the kind.
func NewError(kind Kind, err error) *Error {
	retryable := true
	switch kind {
	case KindDocumentTooLarge, KindEmptyDocument:
		retryable = false
	}
	return &Error{Kind: kind, Retryable: retryable, Err: err}
}

// Classify maps an arbitrary failure from the generation call into the
// taxonomy. Already-classified errors pass through unchanged; everything
// unrecognized is treated as a transport problem, which keeps unknown
// upstream hiccups retryable.
func Classify(err error) *Error {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return NewError(KindQuota, err)
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return NewError(KindAuth, err)
		default:
			return NewError(KindTransport, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTransport, err)
	}

	return NewError(KindTransport, err)
}
