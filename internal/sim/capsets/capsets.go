// Package capsets loads the declarative capability source: per
// agent-type tag profiles consumed by the dispatch capability resolver.
// Loaded once at startup; reloadable on an explicit reconfiguration
// event, after which the resolver must be rebuilt.
package capsets

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type Catalog struct {
	// Profiles maps agent type id to its ordered capability tag list.
	Profiles map[string][]string
	// TypeIDs preserves file order for deterministic iteration.
	TypeIDs []string
	Digest  string
}

type profileDef struct {
	TypeID string   `json:"type_id"`
	Tags   []string `json:"tags"`
}

// Load reads <configDir>/capability_tags.json, validating it against
// <configDir>/schemas/capability_tags.schema.json when the schema file
// is present.
func Load(configDir string) (*Catalog, error) {
	path := filepath.Join(configDir, "capability_tags.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	schemaPath := filepath.Join(configDir, "schemas", "capability_tags.schema.json")
	if _, statErr := os.Stat(schemaPath); statErr == nil {
		if err := validateSchema(schemaPath, raw); err != nil {
			return nil, fmt.Errorf("capability_tags.json: %w", err)
		}
	}

	var defs []profileDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("capability_tags.json: %w", err)
	}

	c := &Catalog{Profiles: map[string][]string{}}
	for _, d := range defs {
		if d.TypeID == "" {
			return nil, fmt.Errorf("capability_tags.json: empty type_id")
		}
		if _, dup := c.Profiles[d.TypeID]; dup {
			return nil, fmt.Errorf("capability_tags.json: duplicate type_id %q", d.TypeID)
		}
		c.Profiles[d.TypeID] = d.Tags
		c.TypeIDs = append(c.TypeIDs, d.TypeID)
	}

	sum := sha256.Sum256(raw)
	c.Digest = hex.EncodeToString(sum[:])
	return c, nil
}

func validateSchema(schemaPath string, raw []byte) error {
	s, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
