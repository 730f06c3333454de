// Package behavior defines the invocation contract that every action
// ultimately reduces to: a single function shape, tagged as either
// synchronous or asynchronous, stored in a Slot that enforces the tag.
//
// The sync/async split is a tagged variant, not a type hierarchy. Both
// tags share one underlying function shape; the Slot records which tag
// it accepts at construction time and every call site branches exactly
// once on that tag.
package behavior

import (
	"context"
	"errors"
	"fmt"
)

// Kind identifies the invocation style a Slot accepts. It is fixed at
// slot construction and never changes.
type Kind int

const (
	// KindSync marks a blocking behavior invoked inline by the caller.
	KindSync Kind = iota
	// KindAsync marks a behavior the caller runs on its own goroutine
	// behind a pending handle.
	KindAsync
)

// String returns the manifest spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindSync:
		return "sync"
	case KindAsync:
		return "async"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a manifest spelling back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "sync":
		return KindSync, nil
	case "async":
		return KindAsync, nil
	default:
		return 0, fmt.Errorf("unknown behavior kind %q (want 'sync' or 'async')", s)
	}
}

// Fields is the named portion of a call's arguments.
type Fields map[string]any

// Call carries the arguments for one invocation: an ordered positional
// sequence plus a named field map.
type Call struct {
	Args   []any
	Fields Fields
}

// Func is the uniform invocation shape every stored behavior is
// normalized to. Slot.Get returns this shape regardless of tag.
type Func func(ctx context.Context, call Call) (any, error)

// Sync tags a function as a blocking behavior.
type Sync Func

// Async tags a function as a suspendable behavior. The function body is
// ordinary blocking Go; the async contract is that callers invoke it
// via a handle and await the result.
type Async Func

var (
	// ErrKindMismatch reports a behavior whose tag does not match the
	// slot it was assigned to.
	ErrKindMismatch = errors.New("behavior kind mismatch")
	// ErrNotImplemented reports invocation of the placeholder behavior
	// installed before any real behavior was set.
	ErrNotImplemented = errors.New("behavior not implemented")
	// ErrNilBehavior reports an attempt to store a nil behavior.
	ErrNilBehavior = errors.New("behavior must not be nil")
)
