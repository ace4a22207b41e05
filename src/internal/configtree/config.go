package configtree

import "strings"

// Oracle is the read-only query surface conf-mode handlers use while
// building an intent record. The "Effective" variants read the active
// snapshot; the others read the proposed one.
type Oracle interface {
	SetLevel(path string)
	Level() string

	Exists(path string) bool
	ExistsEffective(path string) bool

	ReturnValue(path string) (string, bool)
	ReturnValues(path string) []string
	ReturnEffectiveValue(path string) (string, bool)
	ReturnEffectiveValues(path string) []string

	ListNodes(path string) []string
	ListEffectiveNodes(path string) []string
}

// Config is an Oracle over a pair of in-memory snapshots.
type Config struct {
	proposed  Tree
	effective Tree
	level     []string
}

var _ Oracle = (*Config)(nil)

// New returns a Config over the proposed and effective snapshots. Nil trees
// are treated as empty.
func New(proposed, effective Tree) *Config {
	if proposed == nil {
		proposed = Tree{}
	}
	if effective == nil {
		effective = Tree{}
	}
	return &Config{proposed: proposed, effective: effective}
}

// LoadFiles builds a Config from two snapshot files.
func LoadFiles(proposedPath, effectivePath string) (*Config, error) {
	proposed, err := Load(proposedPath)
	if err != nil {
		return nil, err
	}
	effective, err := Load(effectivePath)
	if err != nil {
		return nil, err
	}
	return New(proposed, effective), nil
}

// SetLevel sets the edit level that relative paths are resolved against.
func (c *Config) SetLevel(path string) {
	c.level = splitPath(path)
}

func (c *Config) Level() string {
	return strings.Join(c.level, " ")
}

func (c *Config) resolve(path string) []string {
	parts := make([]string, 0, len(c.level)+4)
	parts = append(parts, c.level...)
	return append(parts, splitPath(path)...)
}

func (c *Config) Exists(path string) bool {
	_, ok := c.proposed.lookup(c.resolve(path))
	return ok
}

func (c *Config) ExistsEffective(path string) bool {
	_, ok := c.effective.lookup(c.resolve(path))
	return ok
}

// ReturnValue returns the value of a leaf node. A valueless node yields ""
// with ok set; for a multi-value node the first value is returned.
func (c *Config) ReturnValue(path string) (string, bool) {
	return returnValue(c.proposed, c.resolve(path))
}

func (c *Config) ReturnEffectiveValue(path string) (string, bool) {
	return returnValue(c.effective, c.resolve(path))
}

// ReturnValues returns every value of a multi-value node in order.
func (c *Config) ReturnValues(path string) []string {
	return returnValues(c.proposed, c.resolve(path))
}

func (c *Config) ReturnEffectiveValues(path string) []string {
	return returnValues(c.effective, c.resolve(path))
}

// ListNodes returns the child names of path, sorted.
func (c *Config) ListNodes(path string) []string {
	return listNodes(c.proposed, c.resolve(path))
}

func (c *Config) ListEffectiveNodes(path string) []string {
	return listNodes(c.effective, c.resolve(path))
}

func returnValue(t Tree, parts []string) (string, bool) {
	node, ok := t.lookup(parts)
	if !ok {
		return "", false
	}
	if s, ok := scalarString(node); ok {
		return s, true
	}
	if vals := values(node); len(vals) > 0 {
		return vals[0], true
	}
	return "", false
}

func returnValues(t Tree, parts []string) []string {
	node, ok := t.lookup(parts)
	if !ok {
		return nil
	}
	return values(node)
}

func listNodes(t Tree, parts []string) []string {
	node, ok := t.lookup(parts)
	if !ok {
		return nil
	}
	m, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	return sortedKeys(m)
}
