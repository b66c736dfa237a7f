package ports

// Executor defines the interface for spawning shell jobs.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Start launches a shell reading script from its standard input, with
	// the rule's target names as positional arguments. The extra
	// environment entries are appended to the inherited one in "KEY=VALUE"
	// format. When echo is set the shell prints commands as it reads them.
	//
	// Start returns once the child is running; its outcome is reported by
	// Process.Wait. The child is not tied to any context: interrupting a
	// build must let running scripts finish or die from their own signals.
	Start(script string, targets []string, extraEnv []string, echo bool) (Process, error)
}

// Process is a handle on one running shell job.
type Process interface {
	// Wait blocks until the job exits; a non-nil error means the script
	// failed.
	Wait() error
}
