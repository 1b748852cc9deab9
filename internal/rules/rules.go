// Package rules turns the unit registry into ranked regex templating rules
// and manages the rule reference file.
package rules

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule replaces literal value text matching Pattern with Placeholder.
// Rules are immutable once generated; the set is recomputed per run.
type Rule struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Placeholder string `json:"placeholder" yaml:"placeholder"`
	Priority    int    `json:"priority" yaml:"priority"`
	Description string `json:"description" yaml:"description"`
}

type ruleFile struct {
	Rules     []Rule `yaml:"rules"`
	UnitRules []Rule `yaml:"unit_rules"` // legacy key
}

// LoadFile reads hand-authored or previously generated rules from a
// YAML/JSON rule file. Both the "rules" and legacy "unit_rules" keys are
// accepted.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file %s: %w", path, err)
	}
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rule file %s: %w", path, err)
	}
	out := append([]Rule{}, rf.Rules...)
	out = append(out, rf.UnitRules...)
	return out, nil
}

// SaveFile writes rules under the "rules" key.
func SaveFile(path string, rs []Rule) error {
	data, err := yaml.Marshal(ruleFile{Rules: rs})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate compiles every pattern, returning a configuration error naming
// the first pattern that does not compile. Run this before handing a rule
// set to the template applier so malformed patterns fail at the boundary
// instead of deep inside traversal.
func Validate(rs []Rule) error {
	for _, r := range rs {
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("rule %q: pattern does not compile: %w", r.Pattern, err)
		}
	}
	return nil
}
