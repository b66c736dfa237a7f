// Package shell starts build scripts under the system shell.
package shell

import (
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/zerr"

	"github.com/remake-build/remake/internal/core/domain"
	"github.com/remake-build/remake/internal/core/ports"
)

// Executor spawns one shell child per job. The script arrives on the
// child's standard input; -e aborts it at the first failing line and -v
// echoes commands as they run. Targets become the positional arguments so
// scripts can refer to them as $1, $2, and so on.
type Executor struct {
	log ports.Logger
}

// NewExecutor returns an executor that logs through log.
func NewExecutor(log ports.Logger) *Executor {
	return &Executor{log: log}
}

// Start launches the shell. The child inherits the parent's standard
// output and error streams and the parent environment extended by
// extraEnv. The returned process outlives any context: a started script
// always runs to completion.
func (e *Executor) Start(script string, targets, extraEnv []string, echo bool) (ports.Process, error) {
	args := []string{"-e", "-s"}
	if echo {
		args = append(args, "-v")
	}
	args = append(args, targets...)

	cmd := exec.Command("sh", args...)
	cmd.Stdin = strings.NewReader(script)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extraEnv...)

	if err := cmd.Start(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrSpawnFailed.Error())
	}
	e.log.Debug("started shell", "pid", cmd.Process.Pid, "targets", strings.Join(targets, " "))
	return &process{cmd: cmd}, nil
}

type process struct {
	cmd *exec.Cmd
}

// Wait blocks until the child exits; a nonzero exit status is the error.
func (p *process) Wait() error {
	return p.cmd.Wait()
}
