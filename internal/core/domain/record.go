package domain

import (
	"slices"
	"sort"
)

// DependencyRecord holds the accumulated static and dynamic prerequisites
// of a group of co-built targets. All targets of a multi-target scripted
// rule share the same record by identity, so a dynamic edge recorded
// through one sibling is visible through all of them.
type DependencyRecord struct {
	Targets []string
	prereqs map[string]struct{}
}

// NewDependencyRecord returns a record for targets with the given initial
// prerequisite set.
func NewDependencyRecord(targets, prereqs []string) *DependencyRecord {
	r := &DependencyRecord{
		Targets: slices.Clone(targets),
		prereqs: make(map[string]struct{}, len(prereqs)),
	}
	for _, p := range prereqs {
		r.prereqs[p] = struct{}{}
	}
	return r
}

// AddPrereq inserts one prerequisite.
func (r *DependencyRecord) AddPrereq(p string) {
	r.prereqs[p] = struct{}{}
}

// MergePrereqs inserts every prerequisite of other.
func (r *DependencyRecord) MergePrereqs(other *DependencyRecord) {
	for p := range other.prereqs {
		r.prereqs[p] = struct{}{}
	}
}

// HasPrereq reports whether p is recorded.
func (r *DependencyRecord) HasPrereq(p string) bool {
	_, ok := r.prereqs[p]
	return ok
}

// Prereqs returns the prerequisite set in sorted order.
func (r *DependencyRecord) Prereqs() []string {
	out := make([]string, 0, len(r.prereqs))
	for p := range r.prereqs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// NumPrereqs returns the size of the prerequisite set.
func (r *DependencyRecord) NumPrereqs() int {
	return len(r.prereqs)
}

// DependencySet maps targets to their shared dependency records. It is the
// in-memory form of the persisted dependency file and is mutated as builds
// proceed.
type DependencySet struct {
	records map[string]*DependencyRecord
}

// NewDependencySet returns an empty set.
func NewDependencySet() *DependencySet {
	return &DependencySet{records: make(map[string]*DependencyRecord)}
}

// Lookup returns the record bound to target, if any.
func (s *DependencySet) Lookup(target string) (*DependencyRecord, bool) {
	r, ok := s.records[target]
	return r, ok
}

// Bind points target at rec, superseding any previous binding. Replacing a
// record rather than mutating it in place is how a scripted rule start
// drops stale dynamic edges.
func (s *DependencySet) Bind(target string, rec *DependencyRecord) {
	s.records[target] = rec
}

// Ensure returns the record bound to target, creating a single-target
// record when none exists yet.
func (s *DependencySet) Ensure(target string) *DependencyRecord {
	if r, ok := s.records[target]; ok {
		return r
	}
	r := NewDependencyRecord([]string{target}, nil)
	s.records[target] = r
	return r
}

// Targets returns every bound target in sorted order.
func (s *DependencySet) Targets() []string {
	out := make([]string, 0, len(s.records))
	for t := range s.records {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of bound targets.
func (s *DependencySet) Len() int {
	return len(s.records)
}

// First returns the first target of the record bound to the lexically
// least target name. The -r mode uses it as the implicit request when the
// caller names no targets.
func (s *DependencySet) First() (string, bool) {
	if len(s.records) == 0 {
		return "", false
	}
	least := ""
	for t := range s.records {
		if least == "" || t < least {
			least = t
		}
	}
	rec := s.records[least]
	if len(rec.Targets) == 0 {
		return least, true
	}
	return rec.Targets[0], true
}
