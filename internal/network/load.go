package network

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region format

// Format names a network file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension. Unknown extensions read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// #endregion format

// #region load

// Load reads, decodes and validates a network file.
func Load(path string) (Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Network{}, fmt.Errorf("read network %s: %w", path, err)
	}
	n, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return Network{}, fmt.Errorf("decode network %s: %w", path, err)
	}
	return n, nil
}

// Decode parses a network document and runs boundary validation on it.
// YAML is normalised through its generic form so both encodings share the JSON field names.
func Decode(data []byte, format Format) (Network, error) {
	if format == FormatYAML {
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return Network{}, fmt.Errorf("parse yaml: %w", err)
		}
		converted, err := json.Marshal(generic)
		if err != nil {
			return Network{}, fmt.Errorf("normalise yaml: %w", err)
		}
		data = converted
	}

	var n Network
	if err := json.Unmarshal(data, &n); err != nil {
		return Network{}, fmt.Errorf("parse json: %w", err)
	}
	if err := Validate(n); err != nil {
		return Network{}, err
	}
	return n, nil
}

// #endregion load

// #region encode

// Encode writes the network in the given format.
func Encode(n Network, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal network: %w", err)
	}
	if format != FormatYAML {
		return data, nil
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("normalise network: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return out, nil
}

// #endregion encode
