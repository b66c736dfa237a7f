package domain

import "go.trai.ch/zerr"

var (
	// ErrSyntax is returned when the rule file or a dependency listing
	// cannot be parsed.
	ErrSyntax = zerr.New("syntax error")

	// ErrDuplicateRule is returned when a target is registered by more
	// than one rule where at least one of them carries a script.
	ErrDuplicateRule = zerr.New("target cannot be the target of several rules")

	// ErrBadGenericity is returned when a rule mixes generic and
	// non-generic targets, or a generic target does not contain exactly
	// one wildcard.
	ErrBadGenericity = zerr.New("invalid use of wildcard in rule targets")

	// ErrLocalAssignment is returned when a local variable assignment
	// appears on a generic or scripted rule.
	ErrLocalAssignment = zerr.New("variable assignment not allowed on scripted or generic rules")

	// ErrNoRuleFile is returned when the rule file cannot be opened.
	ErrNoRuleFile = zerr.New("failed to open rule file")

	// ErrBuildFailed is returned by the application when at least one
	// requested target could not be brought up to date.
	ErrBuildFailed = zerr.New("build failed")

	// ErrStoreReadFailed is returned when the persisted dependency file
	// cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read dependency file")

	// ErrStoreWriteFailed is returned when the persisted dependency file
	// cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write dependency file")

	// ErrSpawnFailed is returned when a shell child cannot be started.
	ErrSpawnFailed = zerr.New("failed to spawn shell")

	// ErrListenFailed is returned when the local socket cannot be created.
	ErrListenFailed = zerr.New("failed to create local socket")

	// ErrRequestFailed is returned when a client-mode request cannot be
	// delivered to the coordinating server.
	ErrRequestFailed = zerr.New("failed to reach build server")
)

// Environment variables shared between the server and its shell children.
const (
	// EnvSocket carries the server's socket address; its presence
	// switches a remake invocation into client mode.
	EnvSocket = "REMAKE_SOCKET"

	// EnvJobID carries the job id a script runs under, so that its
	// sub-requests can be attributed to the right dependency record.
	EnvJobID = "REMAKE_JOB_ID"
)
