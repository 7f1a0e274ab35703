package settings

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema generates the JSON schema describing the persisted record, used by
// the `config schema` command and by external tooling that edits exports.
func Schema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	schema := r.Reflect(&Settings{})

	schema.ID = "https://github.com/mxnstrexgl/cyberdark/settings.schema.json"
	schema.Title = "Cyberdark Settings"
	schema.Description = "Persisted dark-mode settings record"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}

// JSONSchema describes the override map for schema generation; the ordered
// map has no exported fields for reflection to find.
func (s *SiteOverrides) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Domain pattern to partial settings override, first 100 entries kept",
	}
}
