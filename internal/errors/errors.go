// Package errors defines ei's error-kind taxonomy, one type per kind, each
// matchable with errors.As. No stage of the resolve/download/extract/install
// pipeline constructs these types; the stages return plain errors wrapped
// with fmt.Errorf("...: %w", err), and the orchestration layer reports
// their messages without branching on kind.
package errors

import "fmt"

// ParseError means the input reference string could not be classified.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse reference %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NotFoundError means a repository, release, tag, or asset did not exist.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.What)
}

// NetworkError wraps DNS, TCP, TLS, timeout, or non-2xx failures. It is
// retried up to the configured retry count with exponential backoff before
// being surfaced to the caller.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError means a request that required GitHub authentication failed
// because no usable token could be discovered, or the token was rejected.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// DecodeError means a response body or archive entry could not be decoded
// (malformed JSON manifest, corrupt archive, unsupported format).
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IOError wraps a filesystem operation failure during planning or writing.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("filesystem error at %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// OptimiseWarning means strip/UPX reported "already processed" or failed.
// It is always non-fatal and is logged at warn level rather than
// propagated as a failure of the install.
type OptimiseWarning struct {
	Tool string
	Path string
	Err  error
}

func (e *OptimiseWarning) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Tool, e.Path, e.Err)
}

func (e *OptimiseWarning) Unwrap() error { return e.Err }
