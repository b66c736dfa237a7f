package domain

// Status is the obsolescence classification of a target within one run.
type Status int

const (
	// StatusUptodate means the target needs no work.
	StatusUptodate Status = iota

	// StatusTodo means the target is obsolete and its rule must run.
	StatusTodo

	// StatusRecheck means obsolescence cannot be decided until the
	// target's prerequisites have settled.
	StatusRecheck

	// StatusRunning means a shell job for the target is in flight.
	StatusRunning

	// StatusRemade means the target was rebuilt during this run.
	StatusRemade

	// StatusFailed means the target could not be built.
	StatusFailed
)

// String returns the lowercase name used in debug output.
func (s Status) String() string {
	switch s {
	case StatusUptodate:
		return "up-to-date"
	case StatusTodo:
		return "todo"
	case StatusRecheck:
		return "recheck"
	case StatusRunning:
		return "running"
	case StatusRemade:
		return "remade"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Settled reports whether the status is final for this run from a
// client's point of view: the target either needs no further work or
// has definitively failed.
func (s Status) Settled() bool {
	return s == StatusUptodate || s == StatusRemade || s == StatusFailed
}
