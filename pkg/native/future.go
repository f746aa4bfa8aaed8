package native

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/chronodb-go/pkg/errors"
	"github.com/ajitpratap0/chronodb-go/pkg/logger"
)

// ResultFuture adapts one native asynchronous call into a pollable
// operation. The native call is issued at most once, on first Poll or Wait;
// the callback settles the shared completion cell exactly once; settled
// results are idempotent under re-polling.
//
// Abandoning a future does not cancel the in-flight native call. The
// completion cell stays referenced by the pending callback and is reclaimed
// by the garbage collector after whichever side finishes last, which is an
// accepted resource trade-off: a deserted wait leaks the cell only until
// the callback eventually fires.
type ResultFuture struct {
	caller Caller
	sql    string
	issue  sync.Once
	cell   *completionCell
	log    *zap.Logger
}

// completionCell is the shared state between the future and the native
// callback thread. handle and code are written before done is closed and
// read only after it is observed closed; the channel close is the
// synchronization boundary, so the consumer never sees a torn result.
type completionCell struct {
	settle sync.Once
	done   chan struct{}
	handle ResultHandle
	code   int32
}

func (c *completionCell) complete(handle ResultHandle, code int32) {
	c.settle.Do(func() {
		c.handle = handle
		c.code = code
		close(c.done)
	})
}

func (c *completionCell) result() (ResultHandle, error) {
	if c.code != 0 {
		return 0, errors.NewDriverStatus(c.code, "async query failed")
	}
	return c.handle, nil
}

// NewResultFuture prepares a future for one query. The native call is not
// issued until the future is first polled or waited on, and is issued at
// most once over the future's lifetime.
func NewResultFuture(caller Caller, sql string) *ResultFuture {
	return &ResultFuture{
		caller: caller,
		sql:    sql,
		cell:   &completionCell{done: make(chan struct{})},
		log:    logger.With(zap.String("backend", "native")),
	}
}

func (f *ResultFuture) start() {
	f.issue.Do(func() {
		f.log.Debug("issuing native async query")
		// The callback captures the cell, transferring a reference across
		// the foreign call boundary until it fires.
		f.caller.QueryAsync(f.sql, f.cell.complete)
	})
}

// Poll issues the native call on first use and reports the current state
// without blocking. Before the callback fires it returns ok=false; after,
// every call returns the same settled handle or DriverStatus error.
func (f *ResultFuture) Poll() (ResultHandle, bool, error) {
	f.start()
	select {
	case <-f.cell.done:
		h, err := f.cell.result()
		return h, true, err
	default:
		return 0, false, nil
	}
}

// Wait issues the native call on first use and blocks until the callback
// fires or ctx is done. Cancellation abandons the wait but not the native
// call; see the type comment for the leak-until-callback trade-off.
func (f *ResultFuture) Wait(ctx context.Context) (ResultHandle, error) {
	f.start()
	select {
	case <-f.cell.done:
		return f.cell.result()
	case <-ctx.Done():
		f.log.Debug("abandoning wait on native result", zap.Error(ctx.Err()))
		return 0, errors.Wrap(ctx.Err(), errors.ErrorTypeTimeout, "waiting for native result")
	}
}
