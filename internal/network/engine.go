// Package network identifies the card network of a number with CEL rules.
// Identification is descriptive only and never affects a Luhn verdict.
package network

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/khairate89/luhn-isbn-validator/internal/domain"
)

// Engine evaluates compiled network rules in priority order.
type Engine struct {
	mu    sync.RWMutex
	env   *cel.Env
	rules []*CompiledRule
}

// CompiledRule holds a pre-compiled CEL program.
type CompiledRule struct {
	Config  *domain.NetworkRule
	Program cel.Program
}

// NewEngine creates an engine with no rules loaded.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("number", cel.StringType),
		cel.Variable("length", cel.IntType),
		cel.Variable("prefix2", cel.IntType),
		cel.Variable("prefix4", cel.IntType),
		cel.Variable("prefix6", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Engine{env: env}, nil
}

// NewBuiltinEngine creates an engine preloaded with Builtin rules.
func NewBuiltinEngine() (*Engine, error) {
	e, err := NewEngine()
	if err != nil {
		return nil, err
	}
	if err := e.ReloadRules(Builtin()); err != nil {
		return nil, err
	}
	return e, nil
}

// ValidateRule compiles a rule without loading it.
func (e *Engine) ValidateRule(cfg *domain.NetworkRule) error {
	if cfg == nil {
		return fmt.Errorf("network rule is required")
	}
	_, err := e.compileRule(cfg)
	return err
}

// LoadRule compiles a rule and adds it, replacing any rule with the same ID.
func (e *Engine) LoadRule(cfg *domain.NetworkRule) error {
	compiled, err := e.compileRule(cfg)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rules := make([]*CompiledRule, 0, len(e.rules)+1)
	for _, r := range e.rules {
		if r.Config.ID != cfg.ID {
			rules = append(rules, r)
		}
	}
	e.rules = sortRules(append(rules, compiled))
	return nil
}

// ReloadRules replaces every loaded rule. Disabled rules are skipped.
// On a compile error the previous rules stay in place.
func (e *Engine) ReloadRules(configs []*domain.NetworkRule) error {
	rules := make([]*CompiledRule, 0, len(configs))
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		compiled, err := e.compileRule(cfg)
		if err != nil {
			return err
		}
		rules = append(rules, compiled)
	}

	e.mu.Lock()
	e.rules = sortRules(rules)
	e.mu.Unlock()
	return nil
}

// Rules returns the loaded rule configurations in evaluation order.
func (e *Engine) Rules() []*domain.NetworkRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*domain.NetworkRule, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, r.Config)
	}
	return out
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// Identify returns the ID of the first rule matching number, or "" when
// none does. number must already be normalized to digits.
func (e *Engine) Identify(number string) string {
	if number == "" {
		return ""
	}

	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	activation := map[string]any{
		"number":  number,
		"length":  int64(len(number)),
		"prefix2": prefix(number, 2),
		"prefix4": prefix(number, 4),
		"prefix6": prefix(number, 6),
	}

	for _, r := range rules {
		out, _, err := r.Program.Eval(activation)
		if err != nil {
			continue
		}
		if b, ok := out.(types.Bool); ok && bool(b) {
			return r.Config.ID
		}
	}
	return ""
}

func (e *Engine) compileRule(cfg *domain.NetworkRule) (*CompiledRule, error) {
	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", cfg.ID, issues.Err())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("rule %s: expression must return bool, got %s", cfg.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for rule %s: %w", cfg.ID, err)
	}

	return &CompiledRule{
		Config:  cfg,
		Program: program,
	}, nil
}

func sortRules(rules []*CompiledRule) []*CompiledRule {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i].Config, rules[j].Config
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.ID < b.ID
	})
	return rules
}

// prefix returns the first n digits as an integer, or 0 when number is shorter.
func prefix(number string, n int) int64 {
	if len(number) < n {
		return 0
	}
	v, err := strconv.ParseInt(number[:n], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
