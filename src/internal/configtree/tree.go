// Package configtree answers existence and value queries against two snapshots
// of the router configuration: the proposed one being committed and the
// effective one currently active.
//
// A snapshot is a nested mapping loaded from TOML or YAML. Paths are
// whitespace-separated node names relative to the current edit level.
//
//	interfaces:
//	  zerotier:
//	    ztabcdef12:
//	      network: 8056c2e21c000001
//	      address: [10.10.0.1/24]
//	      disable: true        # valueless node
//
// A node set to true is a valueless node; a node set to false is treated as
// absent, so a flag can be switched off without deleting the key.
package configtree

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/echoreply/ifconf/src/internal/errors"
)

// Tree is a parsed configuration snapshot.
type Tree map[string]any

// Load reads a snapshot from path. The format is picked by extension:
// .yaml and .yml are YAML, everything else is TOML. A missing file yields
// an empty tree, which is how an unconfigured system looks.
func Load(path string) (Tree, error) {
	if path == "" {
		return Tree{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Tree{}, nil
		}
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read configuration tree %s", path), err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseTOML(data)
	}
}

// ParseTOML parses a TOML snapshot.
func ParseTOML(data []byte) (Tree, error) {
	tree := Tree{}
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode((*map[string]any)(&tree)); err != nil {
		if derr, ok := err.(*toml.DecodeError); ok {
			row, col := derr.Position()
			return nil, errors.NewConfigError(fmt.Sprintf("invalid configuration tree at line %d column %d", row, col), err)
		}
		return nil, errors.NewConfigError("invalid configuration tree", err)
	}
	return tree, nil
}

// ParseYAML parses a YAML snapshot.
func ParseYAML(data []byte) (Tree, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewConfigError("invalid configuration tree", err)
	}
	tree := Tree{}
	for k, v := range raw {
		tree[k] = normalizeYAML(v)
	}
	return tree, nil
}

// yaml.v3 decodes nested mappings as map[string]any already, except when keys
// are not strings (e.g. a numeric tag node like "10").
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = normalizeYAML(child)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[fmt.Sprint(k)] = normalizeYAML(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalizeYAML(child)
		}
		return out
	default:
		return v
	}
}

// lookup walks parts from the root of t.
func (t Tree) lookup(parts []string) (any, bool) {
	var node any = map[string]any(t)
	for _, p := range parts {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[p]
		if !ok || node == nil {
			return nil, false
		}
	}
	if b, ok := node.(bool); ok && !b {
		return nil, false
	}
	return node, true
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		// valueless node
		return "", true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int:
		return strconv.Itoa(val), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(val), true
	}
}

func values(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := scalarString(item); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		// multi-value written as a set of tag nodes
		return sortedKeys(val)
	default:
		if s, ok := scalarString(val); ok {
			return []string{s}
		}
		return nil
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if b, ok := v.(bool); ok && !b {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func splitPath(path string) []string {
	return strings.Fields(path)
}
