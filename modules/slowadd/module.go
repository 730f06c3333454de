package slowadd

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/actionhub/internal/behavior"
	"github.com/vk/actionhub/internal/catalog"
)

// delay is how long the behavior suspends before producing its sum.
const delay = 10 * time.Millisecond

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Behavior suspends briefly, then returns a+b. Cancellation through the
// invocation context cuts the suspension short.
func Behavior(ctx context.Context, call behavior.Call) (any, error) {
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	a, err := number(call.Fields["a"])
	if err != nil {
		return nil, fmt.Errorf("field 'a': %w", err)
	}
	b, err := number(call.Fields["b"])
	if err != nil {
		return nil, fmt.Errorf("field 'b': %w", err)
	}
	return a + b, nil
}

func number(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// Register registers the behavior with the catalog.
func (m *Module) Register(c *catalog.Catalog) {
	c.Register("slow_add", &catalog.Entry{
		Kind:   behavior.KindAsync,
		Fields: []string{"a", "b"},
		Fn:     behavior.Async(Behavior),
	})
}
