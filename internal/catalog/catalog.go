// Package catalog holds the compiled Go behaviors that action
// manifests bind to by name.
//
// The catalog is populated at startup by modules and then validated
// against the loaded manifests, so a manifest naming a behavior that
// was never compiled in fails before any dispatch happens.
package catalog

import (
	"fmt"
	"log/slog"

	"github.com/vk/actionhub/internal/behavior"
)

// Module is the interface every built-in module implements to be
// registered.
type Module interface {
	Register(c *Catalog)
}

// Entry describes one registered behavior: its kind tag, the field
// names it accepts, and the tagged function itself (behavior.Sync or
// behavior.Async, matching Kind).
type Entry struct {
	Kind   behavior.Kind
	Fields []string
	Fn     any
}

// Catalog maps behavior names to entries.
type Catalog struct {
	all map[string]*Entry
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{all: make(map[string]*Entry)}
}

// Register adds a behavior under name. Registration happens once at
// startup from compiled-in modules, so a duplicate name is a programmer
// error and panics.
func (c *Catalog) Register(name string, e *Entry) {
	if _, exists := c.all[name]; exists {
		panic(fmt.Sprintf("behavior with name '%s' already registered", name))
	}
	slog.Debug("Registering behavior.", "name", name, "kind", e.Kind.String())
	c.all[name] = e
}

// Lookup returns the entry registered under name.
func (c *Catalog) Lookup(name string) (*Entry, bool) {
	e, ok := c.all[name]
	return e, ok
}

// Names returns the registered behavior names; order is unspecified.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.all))
	for name := range c.all {
		names = append(names, name)
	}
	return names
}
