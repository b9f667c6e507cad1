package rule

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/wgergely/repoman/internal/fsutil"
)

// registryVersion is bumped only on format changes.
const registryVersion = "1.0"

// Registry stores all rules and persists them as TOML.
type Registry struct {
	Version string `toml:"version"`
	Rules   []Rule `toml:"rules,omitempty"`

	path string
}

// NewRegistry creates an empty registry that will persist to path.
func NewRegistry(path string) *Registry {
	return &Registry{Version: registryVersion, path: path}
}

// LoadRegistry reads the registry from path. A missing file yields an
// empty registry.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRegistry(path), nil
		}
		return nil, fmt.Errorf("reading rule registry %s: %w", path, err)
	}

	reg := NewRegistry(path)
	if err := toml.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("parsing rule registry %s: %w", path, err)
	}
	if reg.Version == "" {
		reg.Version = registryVersion
	}
	return reg, nil
}

// Save persists the registry atomically.
func (reg *Registry) Save() error {
	data, err := toml.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encoding rule registry: %w", err)
	}
	if err := fsutil.WriteFileAtomic(reg.path, data); err != nil {
		return fmt.Errorf("saving rule registry: %w", err)
	}
	return nil
}

// Add inserts a new rule. Adding an id that already exists is an error;
// use Update to change an existing rule.
func (reg *Registry) Add(r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if _, ok := reg.Get(r.ID); ok {
		return fmt.Errorf("rule %q already exists", r.ID)
	}
	reg.Rules = append(reg.Rules, r)
	return nil
}

// Get returns the rule with the given id.
func (reg *Registry) Get(id string) (Rule, bool) {
	for _, r := range reg.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Update replaces the content and tags of an existing rule, recomputing
// its hash and updated timestamp.
func (reg *Registry) Update(id, content string, tags []string) error {
	for i, r := range reg.Rules {
		if r.ID != id {
			continue
		}
		r.Content = content
		if tags != nil {
			r.Tags = normalizeTags(tags)
		}
		r.ContentHash = fsutil.Checksum(content)
		r.Updated = time.Now().UTC()
		if err := r.Validate(); err != nil {
			return err
		}
		reg.Rules[i] = r
		return nil
	}
	return fmt.Errorf("rule %q not found", id)
}

// Remove deletes the rule with the given id. Returns whether a rule was
// removed.
func (reg *Registry) Remove(id string) bool {
	for i, r := range reg.Rules {
		if r.ID == id {
			reg.Rules = append(reg.Rules[:i], reg.Rules[i+1:]...)
			return true
		}
	}
	return false
}

// List returns all rules sorted by id.
func (reg *Registry) List() []Rule {
	out := make([]Rule, len(reg.Rules))
	copy(out, reg.Rules)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
