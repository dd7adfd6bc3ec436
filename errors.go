package fetch

import (
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/hashicorp/go-multierror"
)

// Kind tags the failure mode of a FetchError, per the error taxonomy.
type Kind string

const (
	// KindTypeError covers URL validation, invalid header name/value,
	// GET/HEAD with a body, double body consumption and getAll on a
	// non-set-cookie header.
	KindTypeError Kind = "type-error"
	// KindSystem covers transport errors, DNS failures and buffer
	// allocation failures.
	KindSystem Kind = "system"
	// KindInvalidJSON covers json() parse failures, including an empty body.
	KindInvalidJSON Kind = "invalid-json"
	// KindMaxRedirect fires when the hop counter would exceed follow-limit.
	KindMaxRedirect Kind = "max-redirect"
	// KindUnsupportedRedirect fires on a 307/308 redirect of a
	// non-idempotent method carrying a non-replayable stream body.
	KindUnsupportedRedirect Kind = "unsupported-redirect"
	// KindNoRedirect fires when redirect mode is "error" and a redirect arrives.
	KindNoRedirect Kind = "no-redirect"
	// KindRequestTimeout fires when response headers do not arrive before the deadline.
	KindRequestTimeout Kind = "request-timeout"
	// KindBodyTimeout fires when a body read stalls beyond the deadline.
	KindBodyTimeout Kind = "body-timeout"
	// KindMaxSize fires when the accumulated body exceeds the size cap.
	KindMaxSize Kind = "max-size"
)

// FetchError is the sole error type surfaced by this package.
type FetchError struct {
	Message string
	Kind    Kind
	Cause   error
	// Code is derived from Cause by errorCode: a syscall errno, DNS
	// failure or corrupt-stream error in its chain maps to a stable
	// string (e.g. "ECONNREFUSED", "ENOTFOUND", "Z_DATA_ERROR"); it is
	// empty for any other cause.
	Code string
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// KindTag returns the kind as its plain string tag.
func (e *FetchError) KindTag() string {
	return string(e.Kind)
}

func newError(kind Kind, message string, cause error) *FetchError {
	return &FetchError{Message: message, Kind: kind, Cause: cause, Code: errorCode(cause)}
}

// errorCode maps a transport or decompression cause to the stable
// code string callers switch on, walking the error chain for the
// syscall errno, DNS failure or corrupt-stream sentinel buried inside
// net.OpError/os.SyscallError wrappers.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED:
			return "ECONNREFUSED"
		case syscall.ECONNRESET:
			return "ECONNRESET"
		case syscall.ECONNABORTED:
			return "ECONNABORTED"
		case syscall.ETIMEDOUT:
			return "ETIMEDOUT"
		case syscall.EPIPE:
			return "EPIPE"
		}
		return ""
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return "ENOTFOUND"
		}
		if dnsErr.IsTimeout {
			return "ETIMEDOUT"
		}
		return ""
	}
	var corrupt flate.CorruptInputError
	if errors.As(err, &corrupt) {
		return "Z_DATA_ERROR"
	}
	for _, dataErr := range []error{gzip.ErrHeader, gzip.ErrChecksum, zlib.ErrHeader, zlib.ErrChecksum, zlib.ErrDictionary} {
		if errors.Is(err, dataErr) {
			return "Z_DATA_ERROR"
		}
	}
	return ""
}

func typeError(message string) *FetchError {
	return newError(KindTypeError, message, nil)
}

func systemError(message string, cause error) *FetchError {
	return newError(KindSystem, message, cause)
}

// IsKind reports whether err is a *FetchError of the given Kind.
func IsKind(err error, kind Kind) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// appendError accumulates validation failures into a single
// aggregated multierror.
func appendError(existing error, err error) error {
	if err == nil {
		return existing
	}
	return multierror.Append(existing, err)
}

// asTypeError flattens an accumulated multierror of validation
// failures into one FetchError, or returns nil if errs is nil.
func asTypeError(message string, errs error) *FetchError {
	if errs == nil {
		return nil
	}
	return newError(KindTypeError, message, errs)
}
