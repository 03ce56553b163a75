// Package adserr defines the error taxonomy shared by the accumulator, the
// MPT, the ADS facade, and the coordinator, and maps each kind onto a
// canonical gRPC status code so every handler response carries a
// "gRPC-style" status even where the transport itself stays on plain HTTP
// (see DESIGN.md).
package adserr

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// Kind enumerates the error taxonomy shared across the authenticated data
// structures and the coordinator.
type Kind int

const (
	// KindInternal covers anything not classified below.
	KindInternal Kind = iota
	// KindInvalidProof: structural check failed or self-verification flag is 0.
	KindInvalidProof
	// KindNotMember: delete or membership query for an element not in S.
	KindNotMember
	// KindDuplicate: add requested for an existing (keyword, fid); a warning, not a failure.
	KindDuplicate
	// KindRouting: no storage node registered, or the addressed node unreachable.
	KindRouting
	// KindTimeout: deadline exceeded.
	KindTimeout
	// KindUnsupportedOperator: boolean expression uses an unmodeled operator.
	KindUnsupportedOperator
	// KindParseError: boolean expression is syntactically malformed.
	KindParseError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidProof:
		return "InvalidProof"
	case KindNotMember:
		return "NotMember"
	case KindDuplicate:
		return "Duplicate"
	case KindRouting:
		return "Routing"
	case KindTimeout:
		return "Timeout"
	case KindUnsupportedOperator:
		return "UnsupportedOperator"
	case KindParseError:
		return "ParseError"
	default:
		return "Internal"
	}
}

// KindFromString parses the taxonomy name Kind.String() produces, for
// reconstructing an Error from a wire-level {"kind": "..."} response body.
// An unrecognized name maps to KindInternal.
func KindFromString(s string) Kind {
	switch s {
	case "InvalidProof":
		return KindInvalidProof
	case "NotMember":
		return KindNotMember
	case "Duplicate":
		return KindDuplicate
	case "Routing":
		return KindRouting
	case "Timeout":
		return KindTimeout
	case "UnsupportedOperator":
		return KindUnsupportedOperator
	case "ParseError":
		return KindParseError
	default:
		return KindInternal
	}
}

// Code maps a Kind onto the canonical gRPC status code a transport-level
// gRPC service would return for it.
func (k Kind) Code() codes.Code {
	switch k {
	case KindInvalidProof:
		return codes.FailedPrecondition
	case KindNotMember:
		return codes.NotFound
	case KindDuplicate:
		return codes.AlreadyExists
	case KindRouting:
		return codes.Unavailable
	case KindTimeout:
		return codes.DeadlineExceeded
	case KindUnsupportedOperator, KindParseError:
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

// Error is a Kind paired with a human-readable message, implementing the
// standard error interface so call sites can keep using errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// Is reports whether target is an *Error of the same Kind, so
// errors.Is(err, ErrNotMember) matches any *Error carrying KindNotMember —
// including one reconstructed from a wire response (internal/cluster's
// decodeTaxonomyError) rather than the exact sentinel pointer. Without this,
// errors.Is would fall back to pointer equality and never match an error
// that crossed the network.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Kind == t.Kind
}

// New constructs an *Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, defaulting to KindInternal if err is
// nil or not one of ours.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ErrNotMember and ErrDuplicate are sentinel instances for errors.Is checks
// where callers don't need a custom message.
var (
	ErrNotMember = New(KindNotMember, "element not a member")
	ErrDuplicate = New(KindDuplicate, "element already a member")
)
