// Package status implements per-target obsolescence tracking for one
// build run.
package status

import (
	"os"
	"time"

	"github.com/remake-build/remake/internal/core/domain"
	"github.com/remake-build/remake/internal/core/ports"
)

// entry pairs a target's classification with the file modification time
// it was derived from. A zero time stands for a missing file. recheck
// records that the target entered Running while only suspected obsolete.
type entry struct {
	status  domain.Status
	last    time.Time
	recheck bool
}

// Tracker memoizes the obsolescence status of every target touched during
// a run. A classification is computed at most once from the filesystem
// and afterwards only moves through Running, Remade or Failed as jobs
// execute. The tracker is shared between the bootstrap pass and the main
// pass, so a rebuilt rule file keeps its Remade status when the real
// targets are scheduled.
type Tracker struct {
	deps  *domain.DependencySet
	log   ports.Logger
	now   time.Time
	state map[string]*entry
}

// New returns a tracker over deps. The construction time is the cutoff
// used by Update: a recorded modification time at or past it cannot be
// told apart from a fresh rebuild.
func New(deps *domain.DependencySet, log ports.Logger) *Tracker {
	return &Tracker{
		deps:  deps,
		log:   log,
		now:   time.Now(),
		state: make(map[string]*entry),
	}
}

// ensure returns the entry for target, creating a zero up-to-date entry
// on first sight.
func (t *Tracker) ensure(target string) *entry {
	if e, ok := t.state[target]; ok {
		return e
	}
	e := &entry{}
	t.state[target] = e
	return e
}

// Status classifies target, computing the classification on first call
// and returning the memoized one afterwards.
//
// A target without a dependency record is up to date exactly when its
// file exists. A target with a record is obsolete when any co-built
// sibling is missing or when a prerequisite is newer than the newest
// sibling. It needs a recheck when a prerequisite is itself not up to
// date, since rebuilding the prerequisite may or may not leave it
// changed. Whatever the verdict, it is written to every sibling of the
// record at once.
func (t *Tracker) Status(target string) domain.Status {
	if e, ok := t.state[target]; ok {
		return e.status
	}
	e := &entry{}
	t.state[target] = e

	rec, ok := t.deps.Lookup(target)
	if !ok {
		if info, err := os.Stat(target); err == nil {
			e.status = domain.StatusUptodate
			e.last = info.ModTime()
		} else {
			e.status = domain.StatusTodo
		}
		t.log.Debug("checked status", "target", target, "status", e.status)
		return e.status
	}

	st := domain.StatusUptodate
	var latest time.Time
	for _, sibling := range rec.Targets {
		var mtime time.Time
		if info, err := os.Stat(sibling); err == nil {
			mtime = info.ModTime()
		} else {
			st = domain.StatusTodo
		}
		t.ensure(sibling).last = mtime
		if mtime.After(latest) {
			latest = mtime
		}
	}
	if st != domain.StatusTodo {
		for _, prereq := range rec.Prereqs() {
			ps := t.Status(prereq)
			if latest.Before(t.state[prereq].last) {
				st = domain.StatusTodo
				break
			}
			if ps == domain.StatusUptodate {
				continue
			}
			st = domain.StatusRecheck
		}
	}
	for _, sibling := range rec.Targets {
		t.ensure(sibling).status = st
	}
	t.log.Debug("checked status", "target", target, "status", st)
	return st
}

// Update reclassifies target after its job reported success. The target
// counts as remade unless its file provably did not change; a recorded
// modification time not older than the run start is ambiguous and counts
// as remade too.
func (t *Tracker) Update(target string) {
	e := t.ensure(target)
	e.status = domain.StatusRemade
	if !e.last.Before(t.now) {
		t.log.Debug("updated status", "target", target, "status", e.status)
		return
	}
	info, err := os.Stat(target)
	switch {
	case err != nil:
		e.last = time.Time{}
	case !info.ModTime().Equal(e.last):
		e.last = info.ModTime()
	default:
		e.status = domain.StatusUptodate
	}
	t.log.Debug("updated status", "target", target, "status", e.status)
}

// StillNeedsRebuild reports whether target, whose prerequisites have just
// been settled, still has to run its script. A target that was only
// suspected obsolete and whose prerequisites all turned out up to date
// is downgraded to up to date together with its siblings and the script
// is skipped.
func (t *Tracker) StillNeedsRebuild(target string) bool {
	e := t.ensure(target)
	suspected := e.status == domain.StatusRecheck ||
		(e.status == domain.StatusRunning && e.recheck)
	if !suspected {
		return true
	}
	rec, ok := t.deps.Lookup(target)
	if !ok {
		return true
	}
	for _, prereq := range rec.Prereqs() {
		if t.ensure(prereq).status != domain.StatusUptodate {
			return true
		}
	}
	for _, sibling := range rec.Targets {
		t.ensure(sibling).status = domain.StatusUptodate
	}
	t.log.Debug("rebuild no longer needed", "target", target)
	return false
}

// MarkRunning marks every target of a starting rule as having a job in
// flight. A lone suspicion of obsolescence is kept so StillNeedsRebuild
// can cancel the script once the prerequisites settle.
func (t *Tracker) MarkRunning(targets []string) {
	for _, target := range targets {
		e := t.ensure(target)
		e.recheck = e.status == domain.StatusRecheck
		e.status = domain.StatusRunning
	}
}

// MarkFailed records that target cannot be brought up to date.
func (t *Tracker) MarkFailed(target string) {
	t.ensure(target).status = domain.StatusFailed
}
