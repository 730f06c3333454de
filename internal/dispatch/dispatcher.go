// Package dispatch resolves request keys against an action registry and
// invokes the matched action uniformly over the sync/async split.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/vk/actionhub/internal/behavior"
	"github.com/vk/actionhub/internal/capability"
	"github.com/vk/actionhub/internal/ctxlog"
	"github.com/vk/actionhub/internal/metrics"
	"github.com/vk/actionhub/internal/registry"
)

// Mode selects how async actions resolve.
type Mode int

const (
	// Blocking awaits async invocations and returns their value.
	Blocking Mode = iota
	// NonBlocking returns the pending *action.Handle instead.
	NonBlocking
)

// FieldChecker validates the request fields for a key before
// invocation. The manifest definition set implements it.
type FieldChecker interface {
	CheckFields(key string, fields behavior.Fields) error
}

// InvocationError wraps a failure raised by the invoked behavior
// itself. The registry is guaranteed untouched when it is returned.
type InvocationError struct {
	Key string
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("action %q failed: %v", e.Key, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Dispatcher resolves keys against a registry. The registry is supplied
// at construction; the dispatcher never mutates it.
type Dispatcher struct {
	reg     *registry.Registry
	mode    Mode
	limiter *rate.Limiter
	checker FieldChecker
	met     *metrics.Dispatch
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMode sets how async actions resolve. The default is Blocking.
func WithMode(m Mode) Option {
	return func(d *Dispatcher) { d.mode = m }
}

// WithLimiter makes every dispatch wait for a token first.
func WithLimiter(l *rate.Limiter) Option {
	return func(d *Dispatcher) { d.limiter = l }
}

// WithFieldChecker validates request fields against declared
// definitions before invoking.
func WithFieldChecker(c FieldChecker) Option {
	return func(d *Dispatcher) { d.checker = c }
}

// WithMetrics records dispatch outcomes on the given instruments.
func WithMetrics(m *metrics.Dispatch) Option {
	return func(d *Dispatcher) { d.met = m }
}

// New creates a dispatcher over reg.
func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{reg: reg}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch resolves key and invokes the matched action with fields as
// its named arguments.
//
// An absent key fails with registry.ErrKeyNotFound. A failure inside
// the behavior (including a panic) comes back as *InvocationError. For
// async actions the result depends on the mode: Blocking awaits and
// returns the value, NonBlocking returns the pending *action.Handle.
func (d *Dispatcher) Dispatch(ctx context.Context, key string, fields behavior.Fields) (any, error) {
	logger := ctxlog.FromContext(ctx).With("key", key)
	start := time.Now()

	act, err := d.reg.Retrieve(key)
	if err != nil {
		logger.Debug("Dispatch target not found.")
		d.met.Observe(key, metrics.OutcomeNotFound, time.Since(start).Seconds())
		return nil, err
	}

	if d.checker != nil {
		if err := d.checker.CheckFields(key, fields); err != nil {
			d.met.Observe(key, metrics.OutcomeFailed, time.Since(start).Seconds())
			return nil, err
		}
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			d.met.Observe(key, metrics.OutcomeFailed, time.Since(start).Seconds())
			return nil, err
		}
	}

	if d.met != nil {
		d.met.InFlight.Inc()
		defer d.met.InFlight.Dec()
	}

	call := behavior.Call{Fields: fields}

	switch target := act.(type) {
	case capability.Invoker:
		logger.Debug("Invoking sync action.")
		result, err := invoke(ctx, target, call)
		if err != nil {
			logger.Error("Action failed.", "error", err)
			d.met.Observe(key, metrics.OutcomeFailed, time.Since(start).Seconds())
			return nil, &InvocationError{Key: key, Err: err}
		}
		d.met.Observe(key, metrics.OutcomeOK, time.Since(start).Seconds())
		return result, nil

	case capability.AsyncInvoker:
		logger.Debug("Invoking async action.", "mode", d.mode)
		handle := target.InvokeAsync(ctx, call)
		if d.mode == NonBlocking {
			d.met.Observe(key, metrics.OutcomePending, time.Since(start).Seconds())
			return handle, nil
		}
		result, err := handle.Await(ctx)
		if err != nil {
			// The caller's own deadline surfaces as-is; everything
			// else is the behavior's failure.
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil, err
			}
			logger.Error("Async action failed.", "error", err)
			d.met.Observe(key, metrics.OutcomeFailed, time.Since(start).Seconds())
			return nil, &InvocationError{Key: key, Err: err}
		}
		d.met.Observe(key, metrics.OutcomeOK, time.Since(start).Seconds())
		return result, nil

	default:
		// Unreachable for entries that went through Create, which
		// capability-checks every candidate.
		return nil, fmt.Errorf("dispatch %q: %w", key, registry.ErrCapabilityMismatch)
	}
}

// invoke runs a sync behavior inline, converting a panic into an error
// so a misbehaving behavior cannot take down the dispatcher.
func invoke(ctx context.Context, target capability.Invoker, call behavior.Call) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("behavior panicked: %v", r)
		}
	}()
	return target.Invoke(ctx, call)
}
