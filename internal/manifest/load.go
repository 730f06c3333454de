package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/actionhub/internal/behavior"
	"github.com/vk/actionhub/internal/ctxlog"
	"github.com/vk/actionhub/internal/fsutil"
)

// Load discovers every .hcl manifest under path and decodes it into a
// definition set. An action name declared twice, in one file or across
// files, is an error.
func Load(ctx context.Context, path string) (*Set, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading action manifests.", "path", path)

	filePaths, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		logger.Error("Failed to walk manifest directory.", "path", path, "error", err)
		return nil, err
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl manifest files found in path.", "path", path)
	}

	set := &Set{defs: make(map[string]*Definition)}
	parser := hclparse.NewParser()

	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest file %s: %w", filePath, diags)
		}

		var root rootSchema
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest file %s: %w", filePath, diags)
		}

		for _, raw := range root.Actions {
			def, err := newDefinition(raw)
			if err != nil {
				return nil, fmt.Errorf("action %q in %s: %w", raw.Name, filePath, err)
			}
			if _, exists := set.defs[def.Name]; exists {
				return nil, fmt.Errorf("action %q in %s: declared more than once", def.Name, filePath)
			}
			set.defs[def.Name] = def
			set.order = append(set.order, def.Name)
		}
		logger.Debug("Loaded definitions from manifest file.", "file", filePath)
	}

	logger.Info("Manifests loaded.", "actions", len(set.defs))
	return set, nil
}

func newDefinition(raw *hclAction) (*Definition, error) {
	kind, err := behavior.ParseKind(raw.Kind)
	if err != nil {
		return nil, err
	}

	def := &Definition{
		Name:        raw.Name,
		Kind:        kind,
		Description: raw.Description,
		Fields:      make(map[string]FieldDef, len(raw.Fields)),
	}
	for _, f := range raw.Fields {
		if _, exists := def.Fields[f.Name]; exists {
			return nil, fmt.Errorf("field %q declared more than once", f.Name)
		}
		typ, err := parseType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		def.Fields[f.Name] = FieldDef{Type: typ, Required: f.Required}
	}
	return def, nil
}
