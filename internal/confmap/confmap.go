// Package confmap decodes flat provider configuration maps into typed
// per-adapter config structs.
//
// Provider configuration arrives as a map of string keys to scalar values
// whose shape differs per backend. Each adapter declares its own struct with
// yaml tags and decodes the map through a yaml round-trip, so unknown keys are
// ignored and type mismatches surface as descriptive errors.
package confmap

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Decode maps the flat key-value configuration onto out, which must be a
// pointer to a struct with yaml tags. Keys absent from the map leave the
// corresponding fields untouched, so out can be pre-populated with defaults.
func Decode(cfg map[string]any, out any) error {
	if len(cfg) == 0 {
		return nil
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("invalid provider config: %w", err)
	}

	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid provider config: %w", err)
	}

	return nil
}
