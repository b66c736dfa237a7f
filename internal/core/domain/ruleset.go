package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// RuleSet is the parsed form of a rule file: global variables, generic
// rules in declaration order, and one specific rule per literal target.
// The whole set is discarded and rebuilt when the rule file itself is
// remade during the bootstrap pass.
type RuleSet struct {
	Vars          *VarTable
	generics      []*Rule
	specifics     map[string]*Rule
	defaultTarget string
}

// NewRuleSet returns an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{
		Vars:      NewVarTable(),
		specifics: make(map[string]*Rule),
	}
}

// DefaultTarget returns the first target of the first specific rule, or
// an empty string when the file declares none.
func (rs *RuleSet) DefaultTarget() string {
	return rs.defaultTarget
}

// RegisterGeneric appends a pattern rule; declaration order breaks
// specificity ties during resolution.
func (rs *RuleSet) RegisterGeneric(r *Rule) error {
	if len(r.Assigns) > 0 {
		return zerr.With(ErrLocalAssignment, "target", r.Targets[0])
	}
	rs.generics = append(rs.generics, r)
	return nil
}

// RegisterScripted registers a scripted specific rule for every one of its
// targets. The targets' shared dependency record becomes the union of the
// rule's prerequisites with whatever was previously persisted for each
// target. A target already claimed by any rule is a configuration error.
func (rs *RuleSet) RegisterScripted(r *Rule, deps *DependencySet) error {
	if len(r.Assigns) > 0 {
		return zerr.With(ErrLocalAssignment, "target", r.Targets[0])
	}
	for _, t := range r.Targets {
		if _, exists := rs.specifics[t]; exists {
			return zerr.With(ErrDuplicateRule, "target", t)
		}
	}
	rec := NewDependencyRecord(r.Targets, r.Prereqs)
	for _, t := range r.Targets {
		if old, ok := deps.Lookup(t); ok {
			rec.MergePrereqs(old)
		}
	}
	for _, t := range r.Targets {
		deps.Bind(t, rec)
		rs.specifics[t] = r
	}
	if rs.defaultTarget == "" {
		rs.defaultTarget = r.Targets[0]
	}
	return nil
}

// RegisterTransparent accumulates a prerequisite-only rule: each named
// target gets its own specific rule, merging prerequisites and local
// assignments additively across declarations, and its own dependency
// record gains the prerequisites. Clashing with a scripted rule is a
// configuration error.
func (rs *RuleSet) RegisterTransparent(r *Rule, deps *DependencySet) error {
	for _, t := range r.Targets {
		prior, ok := rs.specifics[t]
		if ok && !prior.Transparent() {
			return zerr.With(ErrDuplicateRule, "target", t)
		}
		if ok {
			prior.Prereqs = append(prior.Prereqs, r.Prereqs...)
			prior.Assigns = append(prior.Assigns, cloneAssigns(r.Assigns)...)
		} else {
			rs.specifics[t] = &Rule{
				Targets: []string{t},
				Prereqs: slices.Clone(r.Prereqs),
				Assigns: cloneAssigns(r.Assigns),
			}
		}
		rec := deps.Ensure(t)
		for _, p := range r.Prereqs {
			rec.AddPrereq(p)
		}
	}
	if rs.defaultTarget == "" {
		rs.defaultTarget = r.Targets[0]
	}
	return nil
}

// Resolve composes the effective rule for target: a scripted specific rule
// wins outright; otherwise the best generic match (shortest stem, earliest
// declaration on ties) is expanded and every effective target's transparent
// rule folds its prerequisites in, the requested target additionally
// contributing its local assignments. A sibling claimed by a scripted rule
// makes the group ill-formed, which reports as "no rule". Without a generic
// match a transparent rule alone is returned, if any.
func (rs *RuleSet) Resolve(target string) (*Rule, bool) {
	spec, hasSpec := rs.specifics[target]
	if hasSpec && !spec.Transparent() {
		return spec.Clone(), true
	}
	grule := rs.findGeneric(target)
	if grule == nil {
		if hasSpec {
			return spec.Clone(), true
		}
		return nil, false
	}
	for _, t := range grule.Targets {
		sp, ok := rs.specifics[t]
		if !ok {
			continue
		}
		if !sp.Transparent() {
			return nil, false
		}
		grule.Prereqs = append(grule.Prereqs, sp.Prereqs...)
		if t == target {
			grule.Assigns = append(grule.Assigns, cloneAssigns(sp.Assigns)...)
		}
	}
	return grule, true
}

// findGeneric selects the best pattern match: the shortest stem wins and
// earlier declarations win ties. The stem is never empty. The first
// matching pattern within one rule decides that rule's stem.
func (rs *RuleSet) findGeneric(target string) *Rule {
	tlen := len(target)
	best := tlen + 1
	var out *Rule
	for _, g := range rs.generics {
		for _, pat := range g.Targets {
			plen := len(pat)
			if tlen < plen {
				continue
			}
			stemLen := tlen - (plen - 1)
			if best <= stemLen {
				continue
			}
			p := strings.IndexByte(pat, '%')
			if p < 0 {
				continue
			}
			suffix := pat[p+1:]
			if target[:p] != pat[:p] || target[tlen-len(suffix):] != suffix {
				continue
			}
			stem := target[p : p+stemLen]
			out = &Rule{
				Targets: substituteStem(stem, g.Targets),
				Prereqs: substituteStem(stem, g.Prereqs),
				Script:  g.Script,
			}
			best = stemLen
			break
		}
	}
	return out
}

func cloneAssigns(assigns []Assignment) []Assignment {
	if assigns == nil {
		return nil
	}
	out := make([]Assignment, len(assigns))
	for i, a := range assigns {
		out[i] = Assignment{Name: a.Name, Append: a.Append, Value: slices.Clone(a.Value)}
	}
	return out
}
