package ports

import "context"

//go:generate mockgen -source=ipc.go -destination=mocks/mock_ipc.go -package=mocks

// BuildRequest is one decoded message from the listening socket: the job
// id it was sent under (-1 for a user invocation outside any script), the
// requested targets, and a Reply callback that sends the single status
// byte back and closes the connection. Reply must be called exactly once.
type BuildRequest struct {
	JobID   int
	Targets []string
	Reply   func(ok bool)
}

// RequestListener accepts build requests from child scripts on a local
// socket.
type RequestListener interface {
	// Addr returns the address children connect to; it is exported to
	// them through the environment.
	Addr() string

	// Requests returns the channel on which decoded requests arrive. It
	// is closed when the listener shuts down.
	Requests() <-chan BuildRequest

	// Close stops accepting and removes the socket.
	Close() error
}

// ListenerFactory opens a fresh request socket for one build run.
type ListenerFactory func() (RequestListener, error)

// Requester sends one build request to a coordinating server and waits
// for the verdict.
type Requester interface {
	// Request asks the server at addr to bring targets up to date on
	// behalf of job jobID. It reports whether the server answered with
	// success.
	Request(ctx context.Context, addr string, jobID int, targets []string) (bool, error)
}
