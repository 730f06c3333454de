package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/vk/actionhub/internal/action"
	"github.com/vk/actionhub/internal/behavior"
	"github.com/vk/actionhub/internal/metrics"
	"github.com/vk/actionhub/internal/registry"
)

func newEchoRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	require.NoError(t, r.Create("echo", action.New(func(ctx context.Context, call behavior.Call) (any, error) {
		return call.Fields["x"], nil
	})))
	return r
}

func addAction() *action.AsyncAction {
	return action.NewAsync(func(ctx context.Context, call behavior.Call) (any, error) {
		select {
		case <-time.After(5 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return call.Fields["a"].(int) + call.Fields["b"].(int), nil
	})
}

func TestDispatch_SyncAction(t *testing.T) {
	t.Parallel()
	d := New(newEchoRegistry(t))

	got, err := d.Dispatch(context.Background(), "echo", behavior.Fields{"x": 5})
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestDispatch_MissingKey(t *testing.T) {
	t.Parallel()
	d := New(registry.New())

	_, err := d.Dispatch(context.Background(), "missing", behavior.Fields{})
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrKeyNotFound)

	var invErr *InvocationError
	assert.False(t, errors.As(err, &invErr), "a missing key is a lookup failure, not an invocation failure")
}

func TestDispatch_AsyncBlocking(t *testing.T) {
	t.Parallel()
	r := registry.New()
	require.NoError(t, r.Create("slow_add", addAction()))
	d := New(r)

	got, err := d.Dispatch(context.Background(), "slow_add", behavior.Fields{"a": 2, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestDispatch_AsyncNonBlocking(t *testing.T) {
	t.Parallel()
	r := registry.New()
	require.NoError(t, r.Create("slow_add", addAction()))
	d := New(r, WithMode(NonBlocking))

	got, err := d.Dispatch(context.Background(), "slow_add", behavior.Fields{"a": 2, "b": 3})
	require.NoError(t, err)

	handle, ok := got.(*action.Handle)
	require.True(t, ok, "nonblocking dispatch should return the pending handle")

	result, err := handle.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result)
}

func TestDispatch_BehaviorErrorWrapsInvocationError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	r := registry.New()
	require.NoError(t, r.Create("fail", action.New(func(ctx context.Context, call behavior.Call) (any, error) {
		return nil, boom
	})))
	d := New(r)

	_, err := d.Dispatch(context.Background(), "fail", behavior.Fields{})
	require.Error(t, err)

	var invErr *InvocationError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, "fail", invErr.Key)
	assert.ErrorIs(t, err, boom)

	// A failed invocation never mutates the registry.
	assert.True(t, r.Contains("fail"))
	assert.Equal(t, 1, r.Len())
}

func TestDispatch_BehaviorPanicWrapsInvocationError(t *testing.T) {
	t.Parallel()
	r := registry.New()
	require.NoError(t, r.Create("panics", action.New(func(ctx context.Context, call behavior.Call) (any, error) {
		panic("unexpected")
	})))
	d := New(r)

	_, err := d.Dispatch(context.Background(), "panics", behavior.Fields{})
	require.Error(t, err)

	var invErr *InvocationError
	require.True(t, errors.As(err, &invErr))
	assert.Contains(t, invErr.Err.Error(), "behavior panicked")
	assert.True(t, r.Contains("panics"))
}

func TestDispatch_AsyncBehaviorErrorWraps(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	r := registry.New()
	require.NoError(t, r.Create("fail", action.NewAsync(func(ctx context.Context, call behavior.Call) (any, error) {
		return nil, boom
	})))
	d := New(r)

	_, err := d.Dispatch(context.Background(), "fail", behavior.Fields{})
	require.Error(t, err)

	var invErr *InvocationError
	require.True(t, errors.As(err, &invErr))
	assert.ErrorIs(t, err, boom)
}

func TestDispatch_CallerDeadlineSurfacesAsIs(t *testing.T) {
	t.Parallel()
	r := registry.New()
	require.NoError(t, r.Create("hang", action.NewAsync(func(ctx context.Context, call behavior.Call) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})))
	d := New(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := d.Dispatch(ctx, "hang", behavior.Fields{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var invErr *InvocationError
	assert.False(t, errors.As(err, &invErr), "the caller's own deadline is not an invocation failure")
}

func TestDispatch_RateLimiterWaits(t *testing.T) {
	t.Parallel()
	d := New(newEchoRegistry(t), WithLimiter(rate.NewLimiter(rate.Limit(100), 1)))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := d.Dispatch(context.Background(), "echo", behavior.Fields{"x": i})
		require.NoError(t, err)
	}
	// Burst of 1 at 100/s: the second and third dispatch wait ~10ms each.
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestDispatch_MetricsRecordOutcomes(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	met := metrics.NewDispatch(reg)
	d := New(newEchoRegistry(t), WithMetrics(met))

	_, err := d.Dispatch(context.Background(), "echo", behavior.Fields{"x": 1})
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), "missing", behavior.Fields{})
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(met.Total.WithLabelValues("echo", metrics.OutcomeOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(met.Total.WithLabelValues("missing", metrics.OutcomeNotFound)))
	assert.Equal(t, float64(0), testutil.ToFloat64(met.InFlight))
}

func TestDispatch_LimiterFailureRecordsOutcome(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	met := metrics.NewDispatch(reg)
	d := New(newEchoRegistry(t), WithLimiter(rate.NewLimiter(rate.Limit(1), 1)), WithMetrics(met))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Dispatch(ctx, "echo", behavior.Fields{"x": 1})
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(met.Total.WithLabelValues("echo", metrics.OutcomeFailed)))
	assert.Equal(t, float64(0), testutil.ToFloat64(met.InFlight))
}

type rejectAll struct{}

func (rejectAll) CheckFields(key string, fields behavior.Fields) error {
	return errors.New("fields rejected")
}

func TestDispatch_FieldCheckerRunsBeforeInvocation(t *testing.T) {
	t.Parallel()
	invoked := false
	r := registry.New()
	require.NoError(t, r.Create("guarded", action.New(func(ctx context.Context, call behavior.Call) (any, error) {
		invoked = true
		return nil, nil
	})))
	d := New(r, WithFieldChecker(rejectAll{}))

	_, err := d.Dispatch(context.Background(), "guarded", behavior.Fields{"x": 1})
	require.Error(t, err)
	assert.False(t, invoked)
}
