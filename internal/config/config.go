// Package config holds the in-memory model of one deployment environment
// (jobs + host groups) and the YAML loader that produces it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// JobSpec is one scheduled-command definition within an Environment.
type JobSpec struct {
	Name        string `yaml:"name"`
	Schedule    string `yaml:"schedule"`
	Command     string `yaml:"command"`
	User        string `yaml:"user"`
	Enabled     *bool  `yaml:"enabled"`
	LogStdout   string `yaml:"log_stdout"`
	LogStderr   string `yaml:"log_stderr"`
	Description string `yaml:"description"`
}

// IsEnabled treats an absent `enabled` key as true.
func (j JobSpec) IsEnabled() bool {
	return j.Enabled == nil || *j.Enabled
}

// HostGroup is a named, ordered set of host addresses.
type HostGroup struct {
	Group string   `yaml:"group"`
	Hosts []string `yaml:"hosts"`
}

// EnvVar is one key=value entry emitted at the top of the rendered crontab.
type EnvVar struct {
	Key   string
	Value string
}

// EnvVars preserves the YAML document order of the environment mapping.
// A plain map would lose it and break the renderer's determinism.
type EnvVars []EnvVar

func (e *EnvVars) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("environment: expected a mapping, got %s", node.Tag)
	}
	out := make(EnvVars, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, EnvVar{
			Key:   node.Content[i].Value,
			Value: node.Content[i+1].Value,
		})
	}
	*e = out
	return nil
}

// Environment is one named deployment context (e.g. prod, staging): its
// job set, its host groups, and the env-var block for the rendered file.
// It is loaded once per invocation and read-only afterwards.
type Environment struct {
	Name   string `yaml:"-"`
	Source string `yaml:"-"`

	Env     EnvVars     `yaml:"environment"`
	Servers []HostGroup `yaml:"servers"`
	Jobs    []JobSpec   `yaml:"jobs"`
}

// Load reads and decodes one environment file.
func Load(path string) (*Environment, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var env Environment
	if err := yaml.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if len(env.Servers) == 0 && len(env.Jobs) == 0 && len(env.Env) == 0 {
		return nil, fmt.Errorf("config file is empty: %s", path)
	}

	// normalize defaults
	for i := range env.Jobs {
		j := &env.Jobs[i]
		if j.User == "" {
			j.User = "root"
		}
	}

	env.Source = path
	env.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &env, nil
}

// LoadEnv loads `<dir>/<name>.yaml`.
func LoadEnv(dir, name string) (*Environment, error) {
	return Load(filepath.Join(dir, name+".yaml"))
}

// ListEnvs returns the environment names available under dir, sorted.
func ListEnvs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// Hosts flattens the host groups into one target list. When group is
// non-empty only that group contributes. The flattened list is
// deduplicated preserving first-seen order; the same address may appear
// in several groups in the YAML without being an error.
func (e *Environment) Hosts(group string) []string {
	seen := make(map[string]bool)
	var hosts []string
	for _, g := range e.Servers {
		if group != "" && g.Group != group {
			continue
		}
		for _, h := range g.Hosts {
			if h = strings.TrimSpace(h); h == "" || seen[h] {
				continue
			}
			seen[h] = true
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// EnabledJobs returns the jobs that will actually be rendered, in
// definition order.
func (e *Environment) EnabledJobs() []JobSpec {
	var jobs []JobSpec
	for _, j := range e.Jobs {
		if j.IsEnabled() {
			jobs = append(jobs, j)
		}
	}
	return jobs
}
