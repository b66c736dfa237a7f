package domain

import (
	"slices"
	"strings"
)

// Rule is one build directive: produce Targets from Prereqs by piping
// Script into a shell. A rule whose targets carry a % wildcard is generic;
// a specific rule with an empty script is transparent and only contributes
// prerequisites and local variable assignments.
type Rule struct {
	Targets []string
	Prereqs []string
	Assigns []Assignment
	Script  string
}

// Generic reports whether the rule is a pattern rule. Registration
// guarantees that either every target carries a wildcard or none does.
func (r *Rule) Generic() bool {
	return len(r.Targets) > 0 && strings.IndexByte(r.Targets[0], '%') >= 0
}

// Transparent reports whether the rule carries no script.
func (r *Rule) Transparent() bool {
	return r.Script == ""
}

// Empty reports whether the rule names no targets; resolvers use the empty
// rule as "no rule applies".
func (r *Rule) Empty() bool {
	return len(r.Targets) == 0
}

// Clone returns a deep copy; effective rules handed to the scheduler must
// not alias registered state.
func (r *Rule) Clone() *Rule {
	c := &Rule{
		Targets: slices.Clone(r.Targets),
		Prereqs: slices.Clone(r.Prereqs),
		Script:  r.Script,
	}
	if r.Assigns != nil {
		c.Assigns = make([]Assignment, len(r.Assigns))
		for i, a := range r.Assigns {
			c.Assigns[i] = Assignment{Name: a.Name, Append: a.Append, Value: slices.Clone(a.Value)}
		}
	}
	return c
}

// CheckGenericity validates the wildcard discipline: either no target
// contains %, or every target contains exactly one.
func (r *Rule) CheckGenericity() error {
	generic := strings.Count(r.Targets[0], "%") > 0
	for _, t := range r.Targets {
		if n := strings.Count(t, "%"); (generic && n != 1) || (!generic && n != 0) {
			return ErrBadGenericity
		}
	}
	return nil
}

// substituteStem replaces the wildcard of every word containing one with
// the stem; words without a wildcard pass through unchanged.
func substituteStem(stem string, words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		if p := strings.IndexByte(w, '%'); p >= 0 {
			out[i] = w[:p] + stem + w[p+1:]
		} else {
			out[i] = w
		}
	}
	return out
}
