package network

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/khairate89/luhn-isbn-validator/internal/domain"
)

// rulesFile is the on-disk layout of a network rules document:
//
//	rules:
//	  - id: unionpay
//	    name: UnionPay
//	    expression: prefix2 == 62 && length >= 16
//	    priority: 45
type rulesFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
	Priority   int    `yaml:"priority"`

	// Enabled defaults to true when omitted.
	Enabled *bool `yaml:"enabled"`
}

// ParseRules decodes a YAML rules document. Every rule is compile-checked
// against e before any is returned.
func (e *Engine) ParseRules(r io.Reader) ([]*domain.NetworkRule, error) {
	var doc rulesFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode network rules: %w", err)
	}

	rules := make([]*domain.NetworkRule, 0, len(doc.Rules))
	for i, entry := range doc.Rules {
		rule := domain.NetworkRule{
			ID:         entry.ID,
			Name:       entry.Name,
			Expression: entry.Expression,
			Priority:   entry.Priority,
			Enabled:    entry.Enabled == nil || *entry.Enabled,
		}
		if rule.ID == "" {
			return nil, fmt.Errorf("network rule %d: id is required", i)
		}
		if err := e.ValidateRule(&rule); err != nil {
			return nil, err
		}
		rules = append(rules, &rule)
	}
	return rules, nil
}

// LoadFile merges rules from a YAML document with the Builtin set. A file
// rule replaces a builtin rule with the same ID.
func (e *Engine) LoadFile(r io.Reader) error {
	extra, err := e.ParseRules(r)
	if err != nil {
		return err
	}

	byID := make(map[string]*domain.NetworkRule)
	var order []string
	for _, rule := range append(Builtin(), extra...) {
		if _, ok := byID[rule.ID]; !ok {
			order = append(order, rule.ID)
		}
		byID[rule.ID] = rule
	}

	merged := make([]*domain.NetworkRule, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	return e.ReloadRules(merged)
}
