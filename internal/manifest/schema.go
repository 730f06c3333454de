// Package manifest loads and validates the declarative action
// definitions that bind registry keys to compiled behaviors.
//
// A manifest file declares one or more 'action' blocks:
//
//	action "echo" {
//	  kind        = "sync"
//	  description = "Echoes its fields back."
//
//	  field "x" {
//	    type     = "number"
//	    required = true
//	  }
//	}
//
// After loading, the definition set is checked against the behavior
// catalog for strict parity: every declared action must name a compiled
// behavior of the same kind, and the declared fields must match the
// behavior's accepted fields in both directions. This keeps the public
// manifests and the Go code perfectly in sync and turns a wide class of
// runtime errors into startup errors.
package manifest

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/actionhub/internal/behavior"
)

// rootSchema is the top-level structure of a manifest file.
type rootSchema struct {
	Actions []*hclAction `hcl:"action,block"`
}

// hclAction is a single 'action' block, for decoding purposes.
type hclAction struct {
	Name        string      `hcl:"name,label"`
	Kind        string      `hcl:"kind"`
	Description string      `hcl:"description,optional"`
	Fields      []*hclField `hcl:"field,block"`
}

// hclField is a single 'field' block inside an action.
type hclField struct {
	Name     string `hcl:"name,label"`
	Type     string `hcl:"type,optional"`
	Required bool   `hcl:"required,optional"`
}

// FieldDef is the declared contract of one request field.
type FieldDef struct {
	Type     cty.Type
	Required bool
}

// Definition is the format-agnostic representation of one action
// manifest.
type Definition struct {
	Name        string
	Kind        behavior.Kind
	Description string
	Fields      map[string]FieldDef
}

// Set is an ordered collection of definitions keyed by action name.
type Set struct {
	defs  map[string]*Definition
	order []string
}

// Get returns the definition for name.
func (s *Set) Get(name string) (*Definition, bool) {
	d, ok := s.defs[name]
	return d, ok
}

// Names returns the action names in declaration order.
func (s *Set) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Len reports the number of definitions.
func (s *Set) Len() int {
	return len(s.defs)
}

// parseType maps a manifest type spelling to its cty type. 'any'
// disables static checking for that field.
func parseType(s string) (cty.Type, error) {
	switch s {
	case "", "any":
		return cty.DynamicPseudoType, nil
	case "string":
		return cty.String, nil
	case "number":
		return cty.Number, nil
	case "bool":
		return cty.Bool, nil
	default:
		return cty.NilType, fmt.Errorf("unknown field type %q (want 'string', 'number', 'bool' or 'any')", s)
	}
}
