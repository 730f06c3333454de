package action

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/actionhub/internal/behavior"
)

// Handle is the suspension point of an async invocation. It resolves
// exactly once: to the behavior's result, to its error, or to
// context.Canceled if cancelled first. Cancellation is terminal for the
// handle only; the owning action and its slot are unaffected.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	once   sync.Once
	result any
	err    error
}

// start launches fn on its own goroutine under a derived, cancellable
// context.
func start(ctx context.Context, fn behavior.Func, call behavior.Call) *Handle {
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				h.resolve(nil, fmt.Errorf("behavior panicked: %v", r))
			}
		}()
		res, err := fn(runCtx, call)
		h.resolve(res, err)
	}()

	return h
}

func (h *Handle) resolve(result any, err error) {
	h.once.Do(func() {
		h.result = result
		h.err = err
		close(h.done)
	})
}

// Await blocks until the invocation resolves or ctx expires, whichever
// comes first. Awaiting a resolved handle returns the same result
// again.
func (h *Handle) Await(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel transitions a pending handle to its cancelled terminal state
// and signals the running behavior through its context. Cancelling a
// resolved handle is a no-op.
func (h *Handle) Cancel() {
	h.resolve(nil, context.Canceled)
	h.cancel()
}

// Done returns a channel closed when the handle resolves.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
