package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/chronodb-go/pkg/block"
)

// fakeBindable records the call sequence a backend would see.
type fakeBindable struct {
	calls    []string
	affected int64
}

func (f *fakeBindable) Prepare(ctx context.Context, sql string) error {
	f.calls = append(f.calls, "prepare")
	return nil
}
func (f *fakeBindable) SetTableName(name string) error {
	f.calls = append(f.calls, "table:"+name)
	return nil
}
func (f *fakeBindable) SetTags(tags []block.Value) error {
	f.calls = append(f.calls, "tags")
	return nil
}
func (f *fakeBindable) Bind(params []block.Column) error {
	f.calls = append(f.calls, "bind")
	return nil
}
func (f *fakeBindable) AddBatch() error {
	f.calls = append(f.calls, "add_batch")
	return nil
}
func (f *fakeBindable) Execute(ctx context.Context) error {
	f.calls = append(f.calls, "execute")
	f.affected = 3
	return nil
}
func (f *fakeBindable) AffectedRows() int64 { return f.affected }
func (f *fakeBindable) Close() error {
	f.calls = append(f.calls, "close")
	return nil
}

func TestStmtForwardsWellFormedSequence(t *testing.T) {
	inner := &fakeBindable{}
	s := NewStmt(inner)
	ctx := context.Background()

	require.NoError(t, s.Prepare(ctx, "insert into ? values (?, ?)"))
	require.NoError(t, s.SetTableName("meters"))
	require.NoError(t, s.SetTags([]block.Value{block.IntValue(block.TypeInt, 7)}))
	require.NoError(t, s.Bind([]block.Column{
		block.FromTimestamps([]int64{1000}, block.PrecisionMilli),
		block.FromFloat64s([]float64{2.5}),
	}))
	require.NoError(t, s.AddBatch())
	require.NoError(t, s.Execute(ctx))
	assert.Equal(t, int64(3), s.AffectedRows())
	require.NoError(t, s.Close())

	assert.Equal(t, []string{
		"prepare", "table:meters", "tags", "bind", "add_batch", "execute", "close",
	}, inner.calls)
}

func TestStmtRejectsOutOfOrderCalls(t *testing.T) {
	s := NewStmt(&fakeBindable{})

	assert.Error(t, s.SetTableName("meters"))
	assert.Error(t, s.Bind(nil))
	assert.Error(t, s.AddBatch())
	assert.Error(t, s.Execute(context.Background()))
}

// Stmt must itself satisfy the backend surface so facades can nest.
var _ Bindable = (*Stmt)(nil)
