package textclass

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"gopkg.in/yaml.v3"
)

const DefaultCategory = "医学文献"

// Category is one entry of a profile file.
type Category struct {
	Name               string `yaml:"name" json:"name"`
	models.TextProfile `yaml:",inline"`
}

type ProfilesConfig struct {
	Default    string     `yaml:"default" json:"default"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// Table is an immutable category lookup. Build it with NewTable.
type Table struct {
	fallback string
	order    []string
	profiles map[string]models.TextProfile
}

// NewTable validates cfg and copies it. Later changes to cfg do not affect the table.
func NewTable(cfg ProfilesConfig) (*Table, error) {
	if len(cfg.Categories) == 0 {
		return nil, errors.New("no text profiles configured")
	}
	fallback := cfg.Default
	if fallback == "" {
		fallback = DefaultCategory
	}

	t := &Table{fallback: fallback, profiles: make(map[string]models.TextProfile, len(cfg.Categories))}
	for _, c := range cfg.Categories {
		if c.Name == "" {
			return nil, errors.New("text profile without a name")
		}
		if _, dup := t.profiles[c.Name]; dup {
			return nil, fmt.Errorf("duplicate text profile %q", c.Name)
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			return nil, fmt.Errorf("text profile %q: confidence %v outside [0,1]", c.Name, c.Confidence)
		}
		p := c.TextProfile
		p.Keywords = append([]string(nil), c.Keywords...)
		t.profiles[c.Name] = p
		t.order = append(t.order, c.Name)
	}
	if _, ok := t.profiles[fallback]; !ok {
		return nil, fmt.Errorf("default text profile %q is not defined", fallback)
	}
	return t, nil
}

// Lookup returns the profile for category, or the default one with ok=false.
func (t *Table) Lookup(category string) (name string, profile models.TextProfile, ok bool) {
	if p, found := t.profiles[category]; found {
		return category, clone(p), true
	}
	return t.fallback, clone(t.profiles[t.fallback]), false
}

// Categories lists the category names in declaration order.
func (t *Table) Categories() []string {
	return append([]string(nil), t.order...)
}

func (t *Table) Default() string {
	return t.fallback
}

func clone(p models.TextProfile) models.TextProfile {
	p.Keywords = append([]string(nil), p.Keywords...)
	return p
}

// LoadProfiles reads a profile file. An empty path yields the built-in table.
func LoadProfiles(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultTable(), err
	}

	var cfg ProfilesConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}
	return NewTable(cfg)
}

func DefaultProfiles() ProfilesConfig {
	return ProfilesConfig{
		Default: DefaultCategory,
		Categories: []Category{
			{Name: "医学文献", TextProfile: models.TextProfile{
				Keywords: []string{"疾病", "治疗", "诊断", "症状", "药物"}, Sentiment: "中性", Confidence: 0.89, Topic: "医学研究"}},
			{Name: "病历记录", TextProfile: models.TextProfile{
				Keywords: []string{"患者", "症状", "检查", "诊断", "治疗"}, Sentiment: "关注", Confidence: 0.92, Topic: "临床记录"}},
			{Name: "诊断报告", TextProfile: models.TextProfile{
				Keywords: []string{"检查", "结果", "建议", "复查", "治疗"}, Sentiment: "专业", Confidence: 0.95, Topic: "医学诊断"}},
		},
	}
}

func DefaultTable() *Table {
	t, err := NewTable(DefaultProfiles())
	if err != nil {
		panic(err)
	}
	return t
}
