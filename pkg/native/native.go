// Package native bridges the one-shot, callback-driven API of the ChronoDB
// native library into pollable, cancellation-aware result futures.
//
// The raw foreign declarations live outside this module; the cgo binding
// layer implements Caller. This package only owns the completion mechanics.
package native

// ResultHandle is an opaque handle to a native result set. The zero handle
// means "no result".
type ResultHandle uintptr

// Caller abstracts the asynchronous entry points of the native library.
type Caller interface {
	// QueryAsync issues an asynchronous query. The callback is invoked
	// exactly once, on a thread owned by the native runtime, with the raw
	// result handle and the call's status code (zero on success). The
	// callback must not block.
	QueryAsync(sql string, cb func(handle ResultHandle, code int32))
}
