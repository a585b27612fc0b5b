package product

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Payload schema names.
const (
	SchemaProduct     = "product"
	SchemaStockImport = "stock_import"
)

var compiledSchemas = mustCompileSchemas()

func mustCompileSchemas() map[string]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	out := make(map[string]*jsonschema.Schema)
	err := fs.WalkDir(schemaFS, "schemas", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".json") {
			return nil
		}
		f, err := schemaFS.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := compiler.AddResource(p, f); err != nil {
			return fmt.Errorf("add schema %s: %w", p, err)
		}
		s, err := compiler.Compile(p)
		if err != nil {
			return fmt.Errorf("compile schema %s: %w", p, err)
		}
		out[strings.TrimSuffix(path.Base(p), ".json")] = s
		return nil
	})
	if err != nil {
		panic(err)
	}
	return out
}

// ValidatePayload checks a raw JSON body against the named schema.
func ValidatePayload(name string, body []byte) error {
	schema, ok := compiledSchemas[name]
	if !ok {
		return fmt.Errorf("schema %q not found", name)
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("body is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
