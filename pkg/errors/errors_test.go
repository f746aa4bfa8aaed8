package errors

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, ErrorTypeFrame, "reading envelope payload")

	assert.True(t, IsType(err, ErrorTypeFrame))
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.Contains(t, err.Error(), "reading envelope payload")
}

func TestTypedConstructors(t *testing.T) {
	err := NewTypeMismatch("voltage", "int32", "VARCHAR")
	assert.True(t, IsType(err, ErrorTypeTypeMismatch))
	assert.Contains(t, err.Error(), "voltage")

	err = NewNullness("current")
	assert.True(t, IsType(err, ErrorTypeNullness))
	assert.Contains(t, err.Error(), "current")

	err = NewDriverStatus(0x217, "query failed")
	assert.True(t, IsType(err, ErrorTypeDriverStatus))
	assert.Contains(t, err.Error(), "query failed")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(ErrorTypeTimeout, "deadline")))
	assert.True(t, IsRetryable(New(ErrorTypeConnection, "broker down")))
	assert.False(t, IsRetryable(New(ErrorTypeFrame, "bad frame")))
	assert.False(t, IsRetryable(io.EOF))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeData, "bad column").
		WithDetail("column", "ts").
		WithDetail("row", 4)

	var typed *Error
	require.True(t, stderrors.As(err, &typed))
	assert.Equal(t, "ts", typed.Details["column"])
	assert.Equal(t, 4, typed.Details["row"])
}
