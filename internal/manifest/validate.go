package manifest

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/actionhub/internal/catalog"
	"github.com/vk/actionhub/internal/ctxlog"
)

// Validate performs a strict parity check between the loaded manifests
// and the compiled behavior catalog. It checks that every declared
// action names a registered behavior, that the declared kind matches
// the behavior's kind, and that declared fields and accepted fields
// agree in both directions.
func Validate(ctx context.Context, set *Set, cat *catalog.Catalog) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range set.Names() {
		def, _ := set.Get(name)

		entry, ok := cat.Lookup(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("action '%s': manifest names a behavior that is not registered", name))
			continue
		}

		if entry.Kind != def.Kind {
			errs = append(errs, fmt.Sprintf("action '%s': manifest declares kind '%s' but registered behavior is '%s'",
				name, def.Kind, entry.Kind))
		}

		accepted := make(map[string]struct{}, len(entry.Fields))
		for _, f := range entry.Fields {
			accepted[f] = struct{}{}
		}

		// Presence mismatches, both directions.
		for f := range accepted {
			if _, ok := def.Fields[f]; !ok {
				errs = append(errs, fmt.Sprintf("action '%s': behavior accepts field '%s' which is not declared in manifest", name, f))
			}
		}
		for f := range def.Fields {
			if _, ok := accepted[f]; !ok {
				errs = append(errs, fmt.Sprintf("action '%s': manifest declares field '%s' which the behavior does not accept", name, f))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("manifest validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Manifest validation passed.", "actions", set.Len())
	return nil
}
