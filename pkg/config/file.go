package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML file with a flat mapping of configuration keys to
// values. Values which aren't strings (e.g. canned responses written as
// YAML objects) are converted to JSON text.
func LoadFile(path string) (Map, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config values file: %w", err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config values file %q: %w", path, err)
	}

	m := make(Map, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			continue
		case string:
			m[k] = v
		default:
			j, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to convert value of %q to JSON: %w", k, err)
			}
			m[k] = string(j)
		}
	}

	return m, nil
}
