package driver

import (
	"context"

	"github.com/ajitpratap0/chronodb-go/pkg/block"
	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// Stmt is a thin facade over a backend statement: it validates call order
// locally so both backends can assume a well-formed sequence, and forwards
// everything else.
type Stmt struct {
	inner    Bindable
	prepared bool
	bound    bool
}

// NewStmt wraps a backend statement.
func NewStmt(inner Bindable) *Stmt {
	return &Stmt{inner: inner}
}

// Prepare associates the statement with a parameterized query.
func (s *Stmt) Prepare(ctx context.Context, sql string) error {
	if err := s.inner.Prepare(ctx, sql); err != nil {
		return err
	}
	s.prepared = true
	return nil
}

// SetTableName targets the statement at a table.
func (s *Stmt) SetTableName(name string) error {
	if !s.prepared {
		return errors.New(errors.ErrorTypeInternal, "statement is not prepared")
	}
	return s.inner.SetTableName(name)
}

// SetTags binds table tag values for super-table inserts.
func (s *Stmt) SetTags(tags []block.Value) error {
	if !s.prepared {
		return errors.New(errors.ErrorTypeInternal, "statement is not prepared")
	}
	return s.inner.SetTags(tags)
}

// Bind binds one row of parameter columns.
func (s *Stmt) Bind(params []block.Column) error {
	if !s.prepared {
		return errors.New(errors.ErrorTypeInternal, "statement is not prepared")
	}
	if err := s.inner.Bind(params); err != nil {
		return err
	}
	s.bound = true
	return nil
}

// AddBatch seals the bound rows into the current batch.
func (s *Stmt) AddBatch() error {
	if !s.bound {
		return errors.New(errors.ErrorTypeInternal, "no parameters bound")
	}
	return s.inner.AddBatch()
}

// Execute runs the batched statement.
func (s *Stmt) Execute(ctx context.Context) error {
	if !s.prepared {
		return errors.New(errors.ErrorTypeInternal, "statement is not prepared")
	}
	return s.inner.Execute(ctx)
}

// AffectedRows returns the rows written by the last Execute.
func (s *Stmt) AffectedRows() int64 {
	return s.inner.AffectedRows()
}

// Close releases the statement.
func (s *Stmt) Close() error {
	return s.inner.Close()
}
