// Package action wraps a single behavior slot behind a uniform
// invocation surface. Two variants exist: Action invokes its behavior
// inline; AsyncAction invokes it on a goroutine behind a Handle the
// caller awaits.
//
// An action owns its slot exclusively. Replacing the behavior on a live
// action is safe: in-flight invocations keep the wrapper they captured,
// and the replacement applies from the next invocation on.
package action

import (
	"context"

	"github.com/vk/actionhub/internal/behavior"
)

// Action is the synchronous variant.
type Action struct {
	slot *behavior.Slot
}

// New returns a sync action. A nil fn keeps the unimplemented
// placeholder, so the action can be registered first and given its
// behavior later.
func New(fn behavior.Sync) *Action {
	a := &Action{slot: behavior.NewSlot(behavior.KindSync)}
	if fn != nil {
		// A freshly built slot accepts its own kind; no error path.
		_ = a.slot.Set(fn, behavior.Call{})
	}
	return a
}

// SetBehavior replaces the current behavior, binding the given partial
// arguments. Assigning a behavior.Async function fails with
// behavior.ErrKindMismatch.
func (a *Action) SetBehavior(fn any, bound behavior.Call) error {
	return a.slot.Set(fn, bound)
}

// Invoke runs the current behavior inline and returns its result.
func (a *Action) Invoke(ctx context.Context, call behavior.Call) (any, error) {
	return a.slot.Get()(ctx, call)
}

// Behavior returns the current wrapper. It doubles as the behavior
// marker the capability check looks for.
func (a *Action) Behavior() behavior.Func {
	return a.slot.Get()
}

// Kind reports behavior.KindSync.
func (a *Action) Kind() behavior.Kind {
	return a.slot.Kind()
}

// AsyncAction is the asynchronous variant.
type AsyncAction struct {
	slot *behavior.Slot
}

// NewAsync returns an async action, optionally seeded with a behavior.
func NewAsync(fn behavior.Async) *AsyncAction {
	a := &AsyncAction{slot: behavior.NewSlot(behavior.KindAsync)}
	if fn != nil {
		_ = a.slot.Set(fn, behavior.Call{})
	}
	return a
}

// SetBehavior replaces the current behavior, binding the given partial
// arguments. Assigning a behavior.Sync function fails with
// behavior.ErrKindMismatch.
func (a *AsyncAction) SetBehavior(fn any, bound behavior.Call) error {
	return a.slot.Set(fn, bound)
}

// InvokeAsync starts the current behavior on its own goroutine and
// returns a pending Handle. The caller resolves it with Await or
// abandons it with Cancel; the action itself never blocks here.
func (a *AsyncAction) InvokeAsync(ctx context.Context, call behavior.Call) *Handle {
	fn := a.slot.Get()
	return start(ctx, fn, call)
}

// Behavior returns the current wrapper (the async behavior marker).
func (a *AsyncAction) Behavior() behavior.Func {
	return a.slot.Get()
}

// Kind reports behavior.KindAsync.
func (a *AsyncAction) Kind() behavior.Kind {
	return a.slot.Kind()
}
