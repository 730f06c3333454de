package manifest

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/actionhub/internal/behavior"
)

// CheckFields validates a dispatch-time field map against the declared
// definition for key: required fields must be present, undeclared
// fields are rejected, and each value's implied cty type must match the
// declared type unless the declaration is 'any'.
//
// A key without a definition passes unchecked; actions registered
// directly in Go carry no manifest.
func (s *Set) CheckFields(key string, fields behavior.Fields) error {
	def, ok := s.defs[key]
	if !ok {
		return nil
	}

	var errs []string

	for name, fd := range def.Fields {
		if _, present := fields[name]; !present && fd.Required {
			errs = append(errs, fmt.Sprintf("required field '%s' is missing", name))
		}
	}

	for name, value := range fields {
		fd, declared := def.Fields[name]
		if !declared {
			errs = append(errs, fmt.Sprintf("field '%s' is not declared for this action", name))
			continue
		}
		if fd.Type.Equals(cty.DynamicPseudoType) {
			continue
		}
		impliedType, err := gocty.ImpliedType(value)
		if err != nil {
			errs = append(errs, fmt.Sprintf("field '%s': could not imply type from %T: %v", name, value, err))
			continue
		}
		if !fd.Type.Equals(impliedType) {
			errs = append(errs, fmt.Sprintf("field '%s': type mismatch, manifest requires '%s' but value has type '%s'",
				name, fd.Type.FriendlyName(), impliedType.FriendlyName()))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("fields for action %q rejected:\n- %s", key, strings.Join(errs, "\n- "))
	}
	return nil
}
