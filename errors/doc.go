// Package errors provides structured error types for the hostbridge library.
//
// Errors are categorized by Phase (which bridge layer raised the error) and
// Kind (error category). Callers branch on Kind to decide whether to retry,
// reconfigure, or abort:
//
//	KindUnsupported     - the cursor model cannot do this; never retry
//	KindInvalidArgument - fix the argument and retry
//	KindResourceGone    - the backing native region died; abort the read
//	KindHostCall        - the gated native call itself failed
//	KindNotFound        - the host resolved the call but found nothing
//	KindClosed          - the resource was closed on our side
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseWindow, errors.KindResourceGone).
//		Op("read").
//		Detail("row buffer invalidated by cursor advance").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Unsupported(errors.PhaseCursor, "absolute positioning")
//	err := errors.HostCall(errors.PhaseIdentity, "current user", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
