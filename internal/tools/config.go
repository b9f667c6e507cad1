package tools

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/wgergely/repoman/internal/format"
)

// Config selects which tools a workspace projects rules into. A
// missing config file means every builtin tool is enabled.
type Config struct {
	// Enabled lists builtin tool ids to project into. Empty means all.
	Enabled []string `yaml:"enabled,omitempty"`

	// Extra declares targets for tools without builtin support.
	Extra []ExtraTarget `yaml:"extra,omitempty"`
}

// ExtraTarget is a user-declared target in tools.yaml.
type ExtraTarget struct {
	ToolID string `yaml:"tool"`
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// LoadConfig reads the tool configuration from path. A missing file
// yields the zero config, which enables all builtins.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading tool config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing tool config %s: %w", path, err)
	}
	return cfg, nil
}

// Targets resolves the config into the concrete target list, sorted by
// tool id. Unknown builtin ids and extra targets with unrecognized
// formats are still returned so callers can report them per target
// instead of refusing the whole config.
func (c Config) Targets() []Target {
	var out []Target
	if len(c.Enabled) == 0 {
		out = DefaultTargets()
	} else {
		for _, id := range c.Enabled {
			if t, ok := Builtin(id); ok {
				out = append(out, t)
			} else {
				out = append(out, Target{ToolID: id})
			}
		}
	}
	for _, e := range c.Extra {
		out = append(out, Target{ToolID: e.ToolID, Path: e.Path, Format: format.Kind(e.Format)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ToolID < out[j].ToolID })
	return out
}
