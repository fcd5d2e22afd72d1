package suggestion

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// EngineConfig holds configuration for the rule engine.
type EngineConfig struct {
	// Rules to evaluate, in order (default: DefaultRules).
	Rules []Rule

	// Logger for rule failures.
	Logger zerolog.Logger
}

// Engine evaluates an ordered rule set against a Context.
type Engine struct {
	rules  []Rule
	logger zerolog.Logger
}

// NewEngine creates a new rule engine.
func NewEngine(cfg EngineConfig) *Engine {
	rules := cfg.Rules
	if rules == nil {
		rules = DefaultRules()
	}

	return &Engine{
		rules:  rules,
		logger: cfg.Logger,
	}
}

// Evaluate runs every rule against c and returns the produced suggestions
// ordered by priority. Rules of equal priority keep their registration
// order. A rule that errors or panics is logged and skipped.
func (e *Engine) Evaluate(c Context) []Suggestion {
	out := make([]Suggestion, 0, len(e.rules))

	for _, rule := range e.rules {
		s, err := e.evaluate(rule, c)
		if err != nil {
			e.logger.Warn().Err(err).Str("rule_id", rule.ID).Msg("rule evaluation failed")
			continue
		}
		if s == nil {
			continue
		}

		s.RuleID = rule.ID
		s.Priority = rule.Priority
		out = append(out, *s)
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
	return out
}

func (e *Engine) evaluate(rule Rule, c Context) (s *Suggestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return rule.Evaluate(c)
}
