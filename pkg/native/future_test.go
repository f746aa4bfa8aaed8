package native

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// fakeCaller records issued queries and hands the callback to the test so it
// can be fired from any goroutine at any time.
type fakeCaller struct {
	mu    sync.Mutex
	calls int
	sql   string
	cb    func(ResultHandle, int32)
}

func (f *fakeCaller) QueryAsync(sql string, cb func(ResultHandle, int32)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.sql = sql
	f.cb = cb
}

func (f *fakeCaller) fire(h ResultHandle, code int32) {
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()
	cb(h, code)
}

func TestPollPendingThenSettled(t *testing.T) {
	caller := &fakeCaller{}
	fut := NewResultFuture(caller, "select * from meters")

	h, ok, err := fut.Poll()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ResultHandle(0), h)
	assert.Equal(t, 1, caller.calls)
	assert.Equal(t, "select * from meters", caller.sql)

	caller.fire(ResultHandle(0xbeef), 0)

	h, ok, err = fut.Poll()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ResultHandle(0xbeef), h)
}

func TestNativeCallIssuedOnce(t *testing.T) {
	caller := &fakeCaller{}
	fut := NewResultFuture(caller, "select 1")

	for i := 0; i < 5; i++ {
		_, _, err := fut.Poll()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, caller.calls)
}

func TestSettledResultIsIdempotent(t *testing.T) {
	caller := &fakeCaller{}
	fut := NewResultFuture(caller, "select 1")

	_, _, err := fut.Poll()
	require.NoError(t, err)
	caller.fire(ResultHandle(7), 0)

	for i := 0; i < 3; i++ {
		h, ok, err := fut.Poll()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, ResultHandle(7), h)
	}
	assert.Equal(t, 1, caller.calls)
}

func TestDuplicateCallbackIgnored(t *testing.T) {
	caller := &fakeCaller{}
	fut := NewResultFuture(caller, "select 1")

	_, _, err := fut.Poll()
	require.NoError(t, err)
	caller.fire(ResultHandle(1), 0)
	caller.fire(ResultHandle(2), 99)

	h, ok, err := fut.Poll()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ResultHandle(1), h)
}

func TestNonZeroCodeBecomesDriverStatus(t *testing.T) {
	caller := &fakeCaller{}
	fut := NewResultFuture(caller, "select 1")

	_, _, err := fut.Poll()
	require.NoError(t, err)
	caller.fire(0, 0x217)

	h, ok, err := fut.Poll()
	assert.True(t, ok)
	assert.Equal(t, ResultHandle(0), h)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDriverStatus))

	// The same error surfaces through Wait as well.
	_, err = fut.Wait(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeDriverStatus))
}

func TestWaitBlocksUntilCallback(t *testing.T) {
	caller := &fakeCaller{}
	fut := NewResultFuture(caller, "select 1")

	go func() {
		// Give Wait a moment to issue the call and park.
		time.Sleep(10 * time.Millisecond)
		caller.fire(ResultHandle(42), 0)
	}()

	h, err := fut.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultHandle(42), h)
}

func TestWaitHonorsContext(t *testing.T) {
	caller := &fakeCaller{}
	fut := NewResultFuture(caller, "select 1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := fut.Wait(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTimeout))

	// The call stays in flight; a late callback still settles the future.
	caller.fire(ResultHandle(5), 0)
	h, err := fut.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultHandle(5), h)
}

func TestCallbackFromOtherGoroutine(t *testing.T) {
	caller := &fakeCaller{}
	fut := NewResultFuture(caller, "select 1")

	_, _, err := fut.Poll()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		caller.fire(ResultHandle(9), 0)
		close(done)
	}()
	<-done

	h, ok, err := fut.Poll()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ResultHandle(9), h)
}
