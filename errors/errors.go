package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which bridge layer the error originated in
type Phase string

const (
	PhaseGate     Phase = "gate"     // call gate acquisition and dispatch
	PhaseIdentity Phase = "identity" // identity snapshot and lookup
	PhaseWindow   Phase = "window"   // native memory window streaming
	PhaseCursor   Phase = "cursor"   // forward-only cursor operations
	PhaseEngine   Phase = "engine"   // host engine backend
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupported     Kind = "unsupported"
	KindInvalidArgument Kind = "invalid_argument"
	KindResourceGone    Kind = "resource_gone"
	KindHostCall        Kind = "host_call"
	KindNotFound        Kind = "not_found"
	KindClosed          Kind = "closed"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As chains
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error's Phase and Kind.
// A zero Phase or Kind in target acts as a wildcard, so
// errors.Is(err, &Error{Kind: KindResourceGone}) matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return true
}

// KindOf extracts the Kind from err, or "" if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// PhaseOf extracts the Phase from err, or "" if err carries none.
func PhaseOf(err error) Phase {
	var e *Error
	if errors.As(err, &e) {
		return e.Phase
	}
	return ""
}

// IsKind reports whether err carries the given Kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the operation that failed
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Unsupported creates an unsupported-feature error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidArgument creates an invalid-argument error
func InvalidArgument(phase Phase, op, detail string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Op:     op,
		Detail: detail,
		Value:  value,
	}
}

// ResourceGone creates a resource-no-longer-accessible error
func ResourceGone(phase Phase, op, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindResourceGone,
		Op:     op,
		Detail: detail,
	}
}

// HostCall creates a host-communication failure wrapping the native cause
func HostCall(phase Phase, op string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindHostCall,
		Op:    op,
		Cause: cause,
	}
}

// NotFound creates a lookup-miss error, the narrow case of a host call
// that succeeded but resolved nothing
func NotFound(phase Phase, op, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Op:     op,
		Detail: what,
	}
}

// Closed creates an error for operations on a closed resource
func Closed(phase Phase, op string) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindClosed,
		Op:    op,
	}
}
