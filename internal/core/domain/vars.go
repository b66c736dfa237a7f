package domain

import "slices"

// VarTable holds the global variable bindings of a rule file. Values are
// stored fully expanded; an overwriting assignment resets the word list
// and an append assignment extends it.
type VarTable struct {
	vars map[string][]string
}

// NewVarTable returns an empty table.
func NewVarTable() *VarTable {
	return &VarTable{vars: make(map[string][]string)}
}

// Set overwrites name with words.
func (t *VarTable) Set(name string, words []string) {
	t.vars[name] = slices.Clone(words)
}

// Append extends name with words; appending to an unset variable behaves
// like an initial assignment.
func (t *VarTable) Append(name string, words []string) {
	t.vars[name] = append(t.vars[name], words...)
}

// Lookup returns the current value of name and whether it is set.
func (t *VarTable) Lookup(name string) ([]string, bool) {
	w, ok := t.vars[name]
	return w, ok
}

// Assignment is one local variable binding attached to a rule.
type Assignment struct {
	Name   string
	Append bool
	Value  []string
}

// LocalValue resolves name against a rule's local assignments layered over
// the globals: the last overwriting local wins, later appends accumulate,
// and appends without a local overwrite extend the global value. The second
// result reports whether the name is bound at all.
func LocalValue(assigns []Assignment, globals *VarTable, name string) ([]string, bool) {
	words, bound := globals.Lookup(name)
	words = slices.Clone(words)
	for _, a := range assigns {
		if a.Name != name {
			continue
		}
		bound = true
		if a.Append {
			words = append(words, a.Value...)
		} else {
			words = slices.Clone(a.Value)
		}
	}
	return words, bound
}
