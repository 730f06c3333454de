package action

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/actionhub/internal/behavior"
)

func TestAction_InvokeForwardsToBehavior(t *testing.T) {
	t.Parallel()

	a := New(func(ctx context.Context, call behavior.Call) (any, error) {
		return call.Fields["x"], nil
	})

	got, err := a.Invoke(context.Background(), behavior.Call{Fields: behavior.Fields{"x": 5}})
	require.NoError(t, err)
	assert.Equal(t, 5, got)
	assert.Equal(t, behavior.KindSync, a.Kind())
}

func TestAction_WithoutBehaviorFailsNotImplemented(t *testing.T) {
	t.Parallel()

	a := New(nil)
	_, err := a.Invoke(context.Background(), behavior.Call{})
	require.Error(t, err)
	assert.ErrorIs(t, err, behavior.ErrNotImplemented)
}

func TestAction_SetBehaviorRejectsAsync(t *testing.T) {
	t.Parallel()

	a := New(nil)
	err := a.SetBehavior(behavior.Async(func(ctx context.Context, call behavior.Call) (any, error) {
		return nil, nil
	}), behavior.Call{})
	require.Error(t, err)
	assert.ErrorIs(t, err, behavior.ErrKindMismatch)
	assert.Contains(t, err.Error(), "AsyncAction")
}

func TestAction_ReplacementTakesEffectNextInvocation(t *testing.T) {
	t.Parallel()

	a := New(func(ctx context.Context, call behavior.Call) (any, error) { return 1, nil })

	got, err := a.Invoke(context.Background(), behavior.Call{})
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	err = a.SetBehavior(behavior.Sync(func(ctx context.Context, call behavior.Call) (any, error) {
		return 2, nil
	}), behavior.Call{})
	require.NoError(t, err)

	got, err = a.Invoke(context.Background(), behavior.Call{})
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestAsyncAction_InvokeReturnsPendingHandle(t *testing.T) {
	t.Parallel()

	a := NewAsync(func(ctx context.Context, call behavior.Call) (any, error) {
		time.Sleep(5 * time.Millisecond)
		return call.Fields["a"].(int) + call.Fields["b"].(int), nil
	})
	assert.Equal(t, behavior.KindAsync, a.Kind())

	h := a.InvokeAsync(context.Background(), behavior.Call{Fields: behavior.Fields{"a": 2, "b": 3}})
	got, err := h.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	// Awaiting a resolved handle returns the same result again.
	got, err = h.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestAsyncAction_SetBehaviorRejectsSync(t *testing.T) {
	t.Parallel()

	a := NewAsync(nil)
	err := a.SetBehavior(behavior.Sync(func(ctx context.Context, call behavior.Call) (any, error) {
		return nil, nil
	}), behavior.Call{})
	require.Error(t, err)
	assert.ErrorIs(t, err, behavior.ErrKindMismatch)
}

func TestHandle_Cancel(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	a := NewAsync(func(ctx context.Context, call behavior.Call) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	h := a.InvokeAsync(context.Background(), behavior.Call{})
	<-started
	h.Cancel()

	_, err := h.Await(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// Cancellation is terminal for the handle only; the action still
	// invokes fine afterwards.
	require.NoError(t, a.SetBehavior(behavior.Async(func(ctx context.Context, call behavior.Call) (any, error) {
		return "ok", nil
	}), behavior.Call{}))
	got, err := a.InvokeAsync(context.Background(), behavior.Call{}).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestHandle_AwaitHonorsCallerContext(t *testing.T) {
	t.Parallel()

	a := NewAsync(func(ctx context.Context, call behavior.Call) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	h := a.InvokeAsync(context.Background(), behavior.Call{})
	defer h.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := h.Await(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandle_BehaviorErrorSurfaces(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	a := NewAsync(func(ctx context.Context, call behavior.Call) (any, error) {
		return nil, boom
	})

	_, err := a.InvokeAsync(context.Background(), behavior.Call{}).Await(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestHandle_PanicResolvesToError(t *testing.T) {
	t.Parallel()

	a := NewAsync(func(ctx context.Context, call behavior.Call) (any, error) {
		panic("unexpected")
	})

	_, err := a.InvokeAsync(context.Background(), behavior.Call{}).Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "behavior panicked")
}
