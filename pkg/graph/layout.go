package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Non-empty layouts must contain nodes and name a focal node among them.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks structural consistency. It defaults VizType to nodelink.
func (l *Layout) Validate() error {
	if l.VizType == "" {
		l.VizType = VizTypeNodelink
	}
	if !l.IsNodelink() {
		return fmt.Errorf("unsupported viz type %q", l.VizType)
	}
	if l.Empty {
		if len(l.Nodes) > 0 {
			return fmt.Errorf("empty layout must not contain nodes")
		}
		return nil
	}
	if len(l.Nodes) == 0 {
		return fmt.Errorf("layout must contain nodes")
	}
	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("duplicate node %q", n.ID)
		}
		ids[n.ID] = true
	}
	if !ids[l.Focal] {
		return fmt.Errorf("focal node %q not in layout", l.Focal)
	}
	for _, e := range l.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return fmt.Errorf("edge %q references unknown node", e.ID)
		}
	}
	return nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
