// Package planfile reads candidate and asset lists from disk and writes plans
// back out. JSON and YAML are both accepted; the extension decides.
package planfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/brollcut/internal/types"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// LoadCandidates reads either {"insertions": [...]} or a bare list.
func LoadCandidates(path string) ([]types.RawCandidate, error) {
	var doc struct {
		Insertions []types.RawCandidate `json:"insertions" yaml:"insertions"`
	}
	if err := load(path, &doc, &doc.Insertions); err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return doc.Insertions, nil
}

// LoadAssets reads either {"assets": [...]} or a bare list.
func LoadAssets(path string) ([]types.BRollAsset, error) {
	var doc struct {
		Assets []types.BRollAsset `json:"assets" yaml:"assets"`
	}
	if err := load(path, &doc, &doc.Assets); err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	for i, a := range doc.Assets {
		if strings.TrimSpace(a.ID) == "" {
			return nil, fmt.Errorf("load assets: entry %d has no id", i)
		}
	}
	return doc.Assets, nil
}

func load(path string, wrapped, list any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	yamlDoc := isYAML(path)

	target := wrapped
	if isList(b, yamlDoc) {
		target = list
	}
	if yamlDoc {
		err = yaml.Unmarshal(b, target)
	} else {
		err = json.Unmarshal(b, target)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func isList(b []byte, yamlDoc bool) bool {
	if !yamlDoc {
		t := bytes.TrimSpace(b)
		return len(t) > 0 && t[0] == '['
	}
	var n yaml.Node
	if err := yaml.Unmarshal(b, &n); err != nil || len(n.Content) == 0 {
		return false
	}
	return n.Content[0].Kind == yaml.SequenceNode
}

// Encode writes the plan as indented JSON or YAML.
func Encode(w io.Writer, format string, plan types.Plan) error {
	if plan.Insertions == nil {
		plan.Insertions = []types.ScheduledInsertion{}
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
