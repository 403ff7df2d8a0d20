package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/pipeline"
)

// LoadFile reads a graph file and returns a Store holding it.
// Files ending in .yaml or .yml are parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Store, error) {
	g, err := ReadGraph(path)
	if err != nil {
		return nil, err
	}
	return New(g), nil
}

// ReadGraph parses a graph file of the shape {"nodes": [...], "edges": [...]}.
func ReadGraph(path string) (pipeline.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Graph{}, fmt.Errorf("memory: read graph: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// Round-trip through JSON so node data stays raw JSON.
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return pipeline.Graph{}, fmt.Errorf("memory: parse %s: %w", filepath.Base(path), err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return pipeline.Graph{}, fmt.Errorf("memory: convert %s: %w", filepath.Base(path), err)
		}
	}

	var g pipeline.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return pipeline.Graph{}, fmt.Errorf("memory: parse %s: %w", filepath.Base(path), err)
	}
	return g, nil
}
