// Package driver defines the backend-neutral surface of the ChronoDB client:
// the interfaces both transport backends implement, and the statement facade
// that dispatches between them. Backend implementations live outside this
// module (the native binding and the broker transport adapter).
package driver

import (
	"context"

	"github.com/ajitpratap0/chronodb-go/pkg/block"
)

// RowSource yields the blocks of one result set in order. It is the common
// read surface over both backends.
type RowSource interface {
	// Schema returns the result set's fields. It is available before the
	// first block arrives.
	Schema() []block.Field
	// Next returns the next block, or nil once the result set is exhausted.
	Next(ctx context.Context) (*block.Block, error)
	// Close releases the result set. It is safe to call more than once.
	Close() error
}

// Conn is one logical connection to a ChronoDB backend.
type Conn interface {
	// Query executes a query and returns its result set.
	Query(ctx context.Context, sql string) (RowSource, error)
	// Exec executes a statement and returns the affected row count.
	Exec(ctx context.Context, sql string) (int64, error)
	// Stmt prepares a bindable statement.
	Stmt(ctx context.Context) (Bindable, error)
	// Close releases the connection.
	Close() error
}

// Bindable is the parameter-binding statement surface. The call order is
// Prepare, then per batch SetTableName (and optionally SetTags), one or more
// Bind calls, AddBatch, and finally Execute.
type Bindable interface {
	// Prepare associates the statement with a parameterized query.
	Prepare(ctx context.Context, sql string) error
	// SetTableName targets the statement at a table.
	SetTableName(name string) error
	// SetTags binds table tag values for super-table inserts.
	SetTags(tags []block.Value) error
	// Bind binds one row of parameter columns.
	Bind(params []block.Column) error
	// AddBatch seals the bound rows into the current batch.
	AddBatch() error
	// Execute runs the batched statement.
	Execute(ctx context.Context) error
	// AffectedRows returns the rows written by the last Execute.
	AffectedRows() int64
	// Close releases the statement.
	Close() error
}
