// Package dlp masks personal identifiers in free-form values before they are persisted.
package dlp

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Rule struct {
	Name    string `yaml:"name" json:"name"`
	Pattern string `yaml:"pattern" json:"pattern"`
	Mask    string `yaml:"mask" json:"mask"`
	Enabled bool   `yaml:"enabled" json:"enabled"`
}

type RulesConfig struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// LoadRules reads a rules file. An empty path yields DefaultRules.
func LoadRules(path string) (RulesConfig, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultRules(), err
	}

	var cfg RulesConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return RulesConfig{}, err
	}

	if len(cfg.Rules) == 0 {
		return RulesConfig{}, errors.New("no DLP rules configured")
	}

	return cfg, nil
}

// DefaultRules covers the identifiers most likely to end up in uploaded file names and text:
// resident ID numbers, mainland mobile numbers and e-mail addresses.
func DefaultRules() RulesConfig {
	return RulesConfig{Rules: []Rule{
		{Name: "resident_id", Pattern: `(?:^|\D)(\d{17}[\dXx])(?:[^\dXx]|$)`, Mask: "******************", Enabled: true},
		{Name: "mobile", Pattern: `(?:^|\D)(1[3-9]\d{9})(?:\D|$)`, Mask: "***********", Enabled: true},
		{Name: "email", Pattern: `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`, Mask: "***@***", Enabled: true},
	}}
}
