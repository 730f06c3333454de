package behavior

import (
	"context"
	"fmt"
	"sync"
)

// Slot holds exactly one behavior with a fixed invocation kind. A fresh
// slot carries an unimplemented placeholder, so invoking before Set
// fails with ErrNotImplemented instead of a nil deref.
//
// Set and Get are safe for concurrent use. Replacing the behavior takes
// effect on the next Get; wrappers already obtained keep calling the
// behavior they captured.
type Slot struct {
	kind Kind

	mu sync.Mutex
	fn Func
}

// NewSlot returns a slot that only accepts behaviors of the given kind.
func NewSlot(kind Kind) *Slot {
	return &Slot{
		kind: kind,
		fn: func(ctx context.Context, call Call) (any, error) {
			return nil, ErrNotImplemented
		},
	}
}

// Kind reports the invocation style this slot accepts.
func (s *Slot) Kind() Kind {
	return s.kind
}

// Set stores fn behind a wrapper that merges bound arguments into each
// call: call-site positional args come first, bound positional args
// after; call-site fields win, bound fields fill the remaining names.
//
// The supplied function must carry the tag matching the slot's kind
// (behavior.Sync for a sync slot, behavior.Async for an async slot);
// otherwise Set fails with ErrKindMismatch and the error names the
// variant to use instead.
func (s *Slot) Set(fn any, bound Call) error {
	var raw Func
	switch v := fn.(type) {
	case nil:
		return ErrNilBehavior
	case Sync:
		if v == nil {
			return ErrNilBehavior
		}
		if s.kind != KindSync {
			return fmt.Errorf("%w: slot is async; supply a behavior.Async function or keep this behavior on a sync Action", ErrKindMismatch)
		}
		raw = Func(v)
	case Async:
		if v == nil {
			return ErrNilBehavior
		}
		if s.kind != KindAsync {
			return fmt.Errorf("%w: slot is sync; supply a behavior.Sync function or move this behavior to an AsyncAction", ErrKindMismatch)
		}
		raw = Func(v)
	default:
		return fmt.Errorf("%w: got %T, want behavior.Sync or behavior.Async", ErrKindMismatch, fn)
	}

	wrapped := wrap(raw, bound)

	s.mu.Lock()
	s.fn = wrapped
	s.mu.Unlock()
	return nil
}

// Get returns the current wrapper. It never returns the raw original
// passed to Set, so bound arguments cannot be bypassed.
func (s *Slot) Get() Func {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fn
}

// wrap closes over the bound arguments of one Set call. The bound Call
// is copied, so later mutation of the caller's maps does not leak in.
func wrap(fn Func, bound Call) Func {
	boundArgs := make([]any, len(bound.Args))
	copy(boundArgs, bound.Args)
	boundFields := make(Fields, len(bound.Fields))
	for k, v := range bound.Fields {
		boundFields[k] = v
	}

	return func(ctx context.Context, call Call) (any, error) {
		merged := Call{
			Args:   make([]any, 0, len(call.Args)+len(boundArgs)),
			Fields: make(Fields, len(call.Fields)+len(boundFields)),
		}
		merged.Args = append(merged.Args, call.Args...)
		merged.Args = append(merged.Args, boundArgs...)
		for k, v := range call.Fields {
			merged.Fields[k] = v
		}
		for k, v := range boundFields {
			if _, ok := merged.Fields[k]; !ok {
				merged.Fields[k] = v
			}
		}
		return fn(ctx, merged)
	}
}
