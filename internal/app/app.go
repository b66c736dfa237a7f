// Package app implements the application layer for remake: mode
// dispatch between server and client invocations, run orchestration
// around the build coordinator, and dependency persistence.
package app

import (
	"context"
	"io"
	"os"
	"strconv"

	"go.trai.ch/zerr"

	"github.com/remake-build/remake/internal/core/domain"
	"github.com/remake-build/remake/internal/core/ports"
	"github.com/remake-build/remake/internal/engine/coordinator"
	"github.com/remake-build/remake/internal/engine/status"
)

// App represents the main application logic.
type App struct {
	loader    ports.RuleLoader
	store     ports.DependencyStore
	executor  ports.Executor
	listen    ports.ListenerFactory
	requester ports.Requester
	norm      *domain.Normalizer
	logger    ports.Logger

	stdin  io.Reader
	stdout io.Writer
}

// New creates a new App instance.
func New(
	loader ports.RuleLoader,
	store ports.DependencyStore,
	executor ports.Executor,
	listen ports.ListenerFactory,
	requester ports.Requester,
	norm *domain.Normalizer,
	log ports.Logger,
) *App {
	return &App{
		loader:    loader,
		store:     store,
		executor:  executor,
		listen:    listen,
		requester: requester,
		norm:      norm,
		logger:    log,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}
}

// WithStdio redirects the dependency input and the announcement output.
// This is primarily used for testing. A nil stream keeps the default.
func (a *App) WithStdio(in io.Reader, out io.Writer) *App {
	if in != nil {
		a.stdin = in
	}
	if out != nil {
		a.stdout = out
	}
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Jobs caps simultaneous shell jobs; zero or negative means unbounded.
	Jobs int

	// KeepGoing continues building unrelated targets after a failure.
	KeepGoing bool

	// Silent suppresses the per-target "Building ..." announcements.
	Silent bool

	// EchoScripts makes shells print script lines as they read them.
	EchoScripts bool

	// RuleFile overrides the rule file path; empty means Remakefile.
	RuleFile string

	// StdinDeps reads dependency-file syntax from standard input and
	// replaces the targets with their recorded prerequisites.
	StdinDeps bool
}

// Run brings the named targets up to date. When the environment carries
// a coordinator socket the work is delegated to that server; otherwise
// this process becomes the coordinator for the working directory. A
// failed build is reported as domain.ErrBuildFailed.
func (a *App) Run(ctx context.Context, targets []string, opts RunOptions) error {
	if opts.RuleFile == "" {
		opts.RuleFile = domain.DefaultRuleFile
	}
	list := a.norm.NormalizeAll(targets)

	if opts.StdinDeps {
		var err error
		if list, err = a.indirectTargets(list); err != nil {
			return err
		}
	}

	if addr := os.Getenv(domain.EnvSocket); addr != "" {
		return a.requestBuild(ctx, addr, list)
	}
	return a.serve(ctx, list, opts)
}

// indirectTargets reads a dependency listing from standard input and
// replaces targets with the union of their recorded prerequisites.
// Targets without a record contribute nothing. When no targets were
// given and the listing is not empty, the first stored record supplies
// the implicit one.
func (a *App) indirectTargets(targets []string) ([]string, error) {
	stored, err := domain.ReadDependencies(a.stdin)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read dependency listing from stdin")
	}
	if len(targets) == 0 {
		if first, ok := stored.First(); ok {
			targets = []string{first}
		}
	}
	var out []string
	for _, target := range targets {
		rec, ok := stored.Lookup(target)
		if !ok {
			continue
		}
		for _, prereq := range rec.Prereqs() {
			out = append(out, a.norm.Normalize(prereq))
		}
	}
	return out, nil
}

// requestBuild forwards targets to the coordinating server named by the
// environment and translates its one-byte verdict. An empty target list
// succeeds without connecting.
func (a *App) requestBuild(ctx context.Context, addr string, targets []string) error {
	if len(targets) == 0 {
		return nil
	}
	jobID := -1
	if id, err := strconv.Atoi(os.Getenv(domain.EnvJobID)); err == nil {
		jobID = id
	}
	a.logger.Debug("requesting build from server", "addr", addr, "job", jobID)
	ok, err := a.requester.Request(ctx, addr, jobID, targets)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrBuildFailed
	}
	return nil
}

// serve runs this process as the coordinator: load the persisted
// records, parse the rule file, bring the rule file itself up to date
// if needed, then build the requested targets while servicing
// sub-requests from child scripts. The dependency store is saved even
// when the build fails, so dynamic edges discovered by completed jobs
// survive.
func (a *App) serve(ctx context.Context, targets []string, opts RunOptions) error {
	deps, err := a.store.Load()
	if err != nil {
		return err
	}
	ruleFile := a.norm.Normalize(opts.RuleFile)
	rules, err := a.loader.Load(ruleFile, deps)
	if err != nil {
		return err
	}

	listener, err := a.listen()
	if err != nil {
		return err
	}
	defer func() { _ = listener.Close() }()

	tracker := status.New(deps, a.logger)
	coord := coordinator.New(deps, tracker, a.executor, listener, a.logger, a.stdout, coordinator.Options{
		MaxJobs:     opts.Jobs,
		KeepGoing:   opts.KeepGoing,
		ShowTargets: !opts.Silent,
		EchoScripts: opts.EchoScripts,
	})

	failed := false
	if tracker.Status(ruleFile) != domain.StatusUptodate {
		a.logger.Debug("rule file is out of date, bootstrapping", "file", ruleFile)
		if coord.Build(ctx, rules, []string{ruleFile}) {
			// All parser state derives from the old file contents.
			if rules, err = a.loader.Load(ruleFile, deps); err != nil {
				return err
			}
		} else {
			failed = true
		}
	}

	if !failed {
		if len(targets) == 0 {
			if def := rules.DefaultTarget(); def != "" {
				targets = []string{def}
			}
		}
		failed = !coord.Build(ctx, rules, targets)
	}

	if err := a.store.Save(deps); err != nil {
		return err
	}
	if failed {
		return domain.ErrBuildFailed
	}
	return nil
}
