package echo

import (
	"context"

	"github.com/vk/actionhub/internal/behavior"
	"github.com/vk/actionhub/internal/catalog"
)

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Behavior returns the 'x' field unchanged.
func Behavior(ctx context.Context, call behavior.Call) (any, error) {
	return call.Fields["x"], nil
}

// Register registers the behavior with the catalog.
func (m *Module) Register(c *catalog.Catalog) {
	c.Register("echo", &catalog.Entry{
		Kind:   behavior.KindSync,
		Fields: []string{"x"},
		Fn:     behavior.Sync(Behavior),
	})
}
