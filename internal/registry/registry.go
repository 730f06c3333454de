// Package registry provides the keyed store of actions the dispatcher
// resolves against.
//
// A Registry is explicitly constructed and explicitly passed to its
// consumers; there is no package-level instance. Teardown is Clear.
// Every stored value must structurally satisfy the action or
// async-action role, so the dispatcher can invoke anything it retrieves
// without further inspection.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vk/actionhub/internal/capability"
)

var (
	// ErrDuplicateKey reports Create on a key already present.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrKeyNotFound reports Retrieve or Delete on an absent key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrCapabilityMismatch reports a candidate that does not satisfy
	// the action or async-action role.
	ErrCapabilityMismatch = errors.New("candidate does not satisfy the action role")
)

// Registry maps string keys to actions. Lookup order is irrelevant, but
// Keys reports insertion order so listings are reproducible.
//
// All operations are safe for concurrent use; mutations are serialized
// under one mutex, so concurrent Create calls on the same key yield
// exactly one success.
type Registry struct {
	mu      sync.Mutex
	entries map[string]any
	order   []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]any)}
}

// Create stores act under key. It fails with ErrDuplicateKey if the key
// is taken and ErrCapabilityMismatch if act does not satisfy the action
// or async-action role.
func (r *Registry) Create(key string, act any) error {
	if !actionLike(act) {
		return fmt.Errorf("create %q: %w", key, ErrCapabilityMismatch)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("create %q: %w", key, ErrDuplicateKey)
	}
	slog.Debug("Registering action.", "key", key)
	r.entries[key] = act
	r.order = append(r.order, key)
	return nil
}

// Retrieve returns the action stored under key.
func (r *Registry) Retrieve(key string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	act, ok := r.entries[key]
	if !ok {
		return nil, fmt.Errorf("retrieve %q: %w", key, ErrKeyNotFound)
	}
	return act, nil
}

// Delete removes the entry under key, releasing the registry's
// ownership of the action.
func (r *Registry) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; !ok {
		return fmt.Errorf("delete %q: %w", key, ErrKeyNotFound)
	}
	delete(r.entries, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Contains reports whether key is present.
func (r *Registry) Contains(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key]
	return ok
}

// Keys returns a snapshot of the keys in insertion order. The snapshot
// is not live-linked; later mutations do not affect it.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// Len reports the number of entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Get is the item-level accessor of the registry role.
func (r *Registry) Get(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	act, ok := r.entries[key]
	return act, ok
}

// Set is the item-level upsert of the registry role. Unlike Create it
// replaces an existing entry, but the capability check still applies.
func (r *Registry) Set(key string, act any) error {
	if !actionLike(act) {
		return fmt.Errorf("set %q: %w", key, ErrCapabilityMismatch)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; !exists {
		r.order = append(r.order, key)
	}
	r.entries[key] = act
	return nil
}

// Clear removes every entry. This is the explicit teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]any)
	r.order = nil
}

// Keystore marks the registry as a keyed store for the capability
// check.
func (r *Registry) Keystore() {}

func actionLike(act any) bool {
	return capability.Satisfies(act, capability.RoleAction) ||
		capability.Satisfies(act, capability.RoleAsyncAction)
}
