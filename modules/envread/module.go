package envread

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/actionhub/internal/behavior"
	"github.com/vk/actionhub/internal/catalog"
)

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Behavior returns the value of the environment variable named by the
// 'name' field. An unset variable resolves to an empty string.
func Behavior(ctx context.Context, call behavior.Call) (any, error) {
	name, ok := call.Fields["name"].(string)
	if !ok {
		return nil, fmt.Errorf("field 'name' must be a string, got %T", call.Fields["name"])
	}
	return os.Getenv(name), nil
}

// Register registers the behavior with the catalog.
func (m *Module) Register(c *catalog.Catalog) {
	c.Register("env_read", &catalog.Entry{
		Kind:   behavior.KindSync,
		Fields: []string{"name"},
		Fn:     behavior.Sync(Behavior),
	})
}
