// Package policy loads client billing-policy overlays: a base YAML document
// plus per-carrier overlays that apply to specific client IDs, deep-merged
// overlay-wins. It also carries the narrative lint used during entry edit.
package policy

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// BaseFile is the policy document every client starts from.
const BaseFile = "_base.yml"

// Document is a parsed policy: free-form nested maps so carriers can add
// sections without code changes.
type Document map[string]any

// loadYAML reads one policy file. Missing or malformed files degrade to an
// empty document, never an error; policies are advisory.
func loadYAML(path string) Document {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}
	}
	if doc == nil {
		return Document{}
	}
	return doc
}

// DeepMerge returns a copy of base with overlay merged in. Nested maps merge
// recursively; any other overlay value replaces the base value.
func DeepMerge(base, overlay Document) Document {
	out := make(Document, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if om, ok := v.(map[string]any); ok {
			if bm, ok := out[k].(map[string]any); ok {
				out[k] = map[string]any(DeepMerge(bm, om))
				continue
			}
		}
		out[k] = v
	}
	return out
}

// appliesTo reports whether an overlay's applies_if.client_id_in list names
// the client (case-insensitive, whitespace-trimmed).
func appliesTo(doc Document, clientID string) bool {
	cond, ok := doc["applies_if"].(map[string]any)
	if !ok {
		return false
	}
	list, ok := cond["client_id_in"].([]any)
	if !ok {
		return false
	}
	want := strings.ToUpper(strings.TrimSpace(clientID))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if strings.ToUpper(strings.TrimSpace(s)) == want {
			return true
		}
	}
	return false
}

// LoadForClient resolves the effective policy for a client: _base.yml merged
// with every overlay in dir whose applies_if matches, in filename order.
// An empty client ID gets the base policy alone.
func LoadForClient(dir, clientID string) Document {
	base := loadYAML(filepath.Join(dir, BaseFile))
	if clientID == "" {
		return base
	}

	names, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return base
	}
	sort.Strings(names)

	merged := base
	for _, name := range names {
		if filepath.Base(name) == BaseFile {
			continue
		}
		overlay := loadYAML(name)
		if appliesTo(overlay, clientID) {
			merged = DeepMerge(merged, overlay)
		}
	}
	return merged
}
