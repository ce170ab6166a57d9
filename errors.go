package fastdl

import (
	"errors"
	"fmt"
)

// Kind distinguishes the error taxonomy the supervisor and CLI shells key
// exit codes off of.
type Kind int

const (
	// KindTransport covers connection failures, timeouts, and any response
	// status that the chunk retry loop treats as transient.
	KindTransport Kind = iota
	// KindJoin covers a spawned goroutine that panicked or was abandoned.
	KindJoin
	// KindIO covers filesystem open/create/mmap/flush/remove failures.
	KindIO
	// KindProtocol covers a manifest that doesn't parse, a missing
	// Content-Length, or a decode header mismatch.
	KindProtocol
	// KindConfig covers bootstrap failures: bad version.ini, DNS
	// resolution, no output directory.
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindJoin:
		return "join"
	case KindIO:
		return "io"
	case KindProtocol:
		return "protocol"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind so callers can errors.As to
// the taxonomy of §7 without string matching.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether err (or something it wraps) carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

var (
	// ErrMissingContentLength is the sentinel surfaced when a HEAD response
	// for an object omits Content-Length (§4.1, exit code 5).
	ErrMissingContentLength = errors.New("missing Content-Length")
	// ErrBadMagic is returned by the object codec when the decompressed
	// stream does not begin with the "blob " header.
	ErrBadMagic = errors.New("object codec: bad magic, expected \"blob \"")
	// ErrBadSize is returned when the header's size field contains a
	// non-decimal byte.
	ErrBadSize = errors.New("object codec: bad size field in header")
	// ErrShortBody is returned when a chunk GET's body length doesn't match
	// the requested range.
	ErrShortBody = errors.New("chunk body length does not match requested range")
	// ErrNoOutputDir is returned when no output directory was given and no
	// OS-specific fallback could be resolved (exit code 4).
	ErrNoOutputDir = errors.New("no output directory configured or discoverable")
	// ErrBadManifestField is returned when a manifest entry's header fields
	// fail structural validation (exit code 2).
	ErrBadManifestField = errors.New("invalid manifest entry field")
	// ErrBadEntryName is returned when a manifest entry's path is not valid
	// UTF-8 (exit code 3).
	ErrBadEntryName = errors.New("manifest entry name is not valid UTF-8")
)
