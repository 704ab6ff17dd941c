package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/canopy/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ReadLayout decodes a layout from path, or from stdin when path is "-".
func ReadLayout(path string, stdin io.Reader) (*domain.LayoutServiceData, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open layout: %w", err)
		}
		defer f.Close()
		r = f
	}

	var layout domain.LayoutServiceData
	if err := json.NewDecoder(r).Decode(&layout); err != nil {
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}
	return &layout, nil
}

// WriteOutput encodes v in the requested format. YAML output keeps the JSON field
// names and key order.
func WriteOutput(w io.Writer, v any, format string) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	switch format {
	case "", FormatJSON:
		_, err = fmt.Fprintln(w, string(raw))
		return err
	case FormatYAML:
		// JSON is YAML; decoding into a node keeps the key order.
		var node yaml.Node
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return fmt.Errorf("failed to convert output: %w", err)
		}
		blockStyle(&node)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (json, yaml)", format)
	}
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, c := range n.Content {
		blockStyle(c)
	}
}
