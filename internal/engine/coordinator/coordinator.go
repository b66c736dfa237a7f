// Package coordinator implements the cooperative build loop: a
// single-threaded scheduler that walks a queue of build requests,
// spawns shell jobs within a slot budget, and services sub-requests
// arriving from those jobs over the local socket.
package coordinator

import (
	"container/list"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/remake-build/remake/internal/core/domain"
	"github.com/remake-build/remake/internal/core/ports"
	"github.com/remake-build/remake/internal/engine/status"
)

// Options tune one build pass.
type Options struct {
	// MaxJobs caps the number of shells doing real work at once. Zero or
	// negative means unbounded.
	MaxJobs int

	// KeepGoing continues building unrelated targets after a failure.
	KeepGoing bool

	// ShowTargets announces each spawned rule with a "Building ..." line.
	ShowTargets bool

	// EchoScripts makes the shell print script lines as it reads them.
	EchoScripts bool
}

// completion is the verdict of one reaped shell job.
type completion struct {
	jobID int
	ok    bool
}

// client is one unit of outstanding work: the user's original request,
// a sub-request read from the socket, or a dependency client created to
// settle a rule's prerequisites before its script may run. A client is
// done when both its pending list and its running set are empty.
type client struct {
	jobID   int
	pending []string
	running map[string]struct{}
	failed  bool

	// delayed is the rule whose script waits for this client, set only
	// on dependency clients.
	delayed *domain.Rule

	// reply sends the verdict byte back to a socket client.
	reply func(ok bool)
}

func newClient(jobID int) *client {
	return &client{jobID: jobID, running: make(map[string]struct{})}
}

// waitingOn returns the sorted running set, for diagnostics.
func (cl *client) waitingOn() []string {
	out := make([]string, 0, len(cl.running))
	for target := range cl.running {
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}

// Coordinator drives every shell job of a run. All of its state is
// owned by the goroutine calling Build; jobs and socket handlers only
// talk to it through channels.
type Coordinator struct {
	deps     *domain.DependencySet
	tracker  *status.Tracker
	executor ports.Executor
	listener ports.RequestListener
	log      ports.Logger
	out      io.Writer
	opts     Options

	rules       *domain.RuleSet
	clients     *list.List
	jobCounter  int
	jobTargets  map[int][]string
	runningJobs int
	waitingJobs int
	completions chan completion
	reapers     errgroup.Group
	interrupted bool
	failure     bool
}

// New returns a coordinator sharing deps and tracker with the caller.
// The listener must already be accepting; its address is exported to
// every spawned shell.
func New(
	deps *domain.DependencySet,
	tracker *status.Tracker,
	executor ports.Executor,
	listener ports.RequestListener,
	log ports.Logger,
	out io.Writer,
	opts Options,
) *Coordinator {
	return &Coordinator{
		deps:        deps,
		tracker:     tracker,
		executor:    executor,
		listener:    listener,
		log:         log,
		out:         out,
		opts:        opts,
		clients:     list.New(),
		jobTargets:  make(map[int][]string),
		completions: make(chan completion),
	}
}

// Build brings targets up to date under rules, servicing socket
// sub-requests until every client has settled. It reports whether the
// requested targets were all brought up to date. Canceling ctx stops
// new jobs from starting; jobs already running are waited for.
//
// Build may be called again with a fresh rule set; status, dependency
// records and job ids carry over, which is what lets a rebuilt rule
// file keep its remade status during the second pass.
func (c *Coordinator) Build(ctx context.Context, rules *domain.RuleSet, targets []string) bool {
	c.rules = rules
	c.failure = false
	root := newClient(-1)
	root.pending = slices.Clone(targets)
	c.clients.PushBack(root)
	c.log.Debug("starting build pass", "targets", strings.Join(targets, " "))

	done := ctx.Done()
	requests := c.listener.Requests()
	for {
		c.updateClients()
		if c.clients.Len() == 0 {
			if c.runningJobs == 0 {
				break
			}
		} else if c.runningJobs <= c.waitingJobs {
			// Nothing can settle on its own: every running shell is
			// blocked on a sub-request reply, or no shell runs at all.
			c.breakDeadlock()
			continue
		}
		select {
		case req, ok := <-requests:
			if !ok {
				requests = nil
				continue
			}
			c.acceptRequest(req)
		case comp := <-c.completions:
			c.runningJobs--
			c.completeJob(comp.jobID, comp.ok)
		case <-done:
			c.interrupted = true
			done = nil
			c.log.Warn("interrupted, waiting for running jobs")
		}
	}
	_ = c.reapers.Wait()
	c.log.Debug("build pass finished", "failure", c.failure)
	return !c.failure
}

// hasFreeSlots reports whether a new shell may start. Jobs blocked on a
// sub-request reply do not occupy a slot; otherwise a chain of nested
// invocations would deadlock the budget.
func (c *Coordinator) hasFreeSlots() bool {
	if c.opts.MaxJobs <= 0 {
		return true
	}
	return c.runningJobs-c.waitingJobs < c.opts.MaxJobs
}

// updateClients walks the queue front to back, settling finished work
// and starting pending targets while the slot budget allows.
func (c *Coordinator) updateClients() {
	var next *list.Element
	for e := c.clients.Front(); e != nil && c.hasFreeSlots(); e = next {
		next = e.Next()

		if !c.settleRunning(e.Value.(*client)) {
			c.failClient(e)
			continue
		}

		full, ok := c.drainPending(&e, &next)
		if !ok {
			c.failClient(e)
			continue
		}
		if full {
			return
		}

		// e may have been rebound to a freshly inserted dependency
		// client during the drain.
		cl := e.Value.(*client)
		if len(cl.pending) == 0 && len(cl.running) == 0 {
			if cl.failed {
				c.failClient(e)
				continue
			}
			c.completeRequest(cl, true)
			c.clients.Remove(e)
		}
	}
}

// settleRunning removes targets from the client's running set once
// their jobs have finished. It reports false when a failure must take
// the whole client down.
func (c *Coordinator) settleRunning(cl *client) bool {
	for target := range cl.running {
		switch c.tracker.Status(target) {
		case domain.StatusRunning:
		case domain.StatusFailed:
			if !c.opts.KeepGoing {
				return false
			}
			cl.failed = true
			delete(cl.running, target)
		case domain.StatusUptodate, domain.StatusRemade:
			delete(cl.running, target)
		}
	}
	return true
}

// drainPending starts or settles every pending target of the client at
// *e. Starting a rule with prerequisites inserts a dependency client
// before *e and rebinds *e to it, so the drain descends into the new
// client first; that is what makes scheduling depth-first. It returns
// full=true when the slot budget ran out mid-drain and ok=false when a
// failure must take the client down.
func (c *Coordinator) drainPending(e, next **list.Element) (full, ok bool) {
	for {
		cl := (*e).Value.(*client)
		if len(cl.pending) == 0 {
			return false, true
		}
		target := cl.pending[0]
		cl.pending = cl.pending[1:]
		switch c.tracker.Status(target) {
		case domain.StatusRunning:
			cl.running[target] = struct{}{}
		case domain.StatusUptodate, domain.StatusRemade:
		case domain.StatusFailed:
			if !c.opts.KeepGoing {
				return false, false
			}
			cl.failed = true
		default: // Todo, Recheck
			if !c.startTarget(target, e) {
				if !c.opts.KeepGoing {
					return false, false
				}
				cl.failed = true
				continue
			}
			cl.running[target] = struct{}{}
			if !c.hasFreeSlots() {
				return true, true
			}
			*next = (*e).Next()
		}
	}
}

// failClient completes the client at e with a failure verdict and drops
// it from the queue.
func (c *Coordinator) failClient(e *list.Element) {
	c.completeRequest(e.Value.(*client), false)
	c.clients.Remove(e)
}

// breakDeadlock fails the frontmost client. It is called when clients
// remain but none can settle: either no job is running, or every running
// shell is itself blocked on a sub-request reply. Both states only a
// dependency cycle can produce.
func (c *Coordinator) breakDeadlock() {
	e := c.clients.Front()
	cl := e.Value.(*client)
	c.log.Warn("circular dependency, abandoning deepest request",
		"job", cl.jobID, "targets", strings.Join(cl.waitingOn(), " "))
	c.failClient(e)
}

// startTarget resolves target and gets its job under way. A rule with
// static prerequisites does not spawn yet: a dependency client holding
// the deferred rule is inserted before *e and *e is rebound to it.
func (c *Coordinator) startTarget(target string, e **list.Element) bool {
	if c.interrupted {
		c.tracker.MarkFailed(target)
		c.log.Debug("not starting target after interrupt", "target", target)
		return false
	}
	rule, ok := c.rules.Resolve(target)
	if !ok {
		c.tracker.MarkFailed(target)
		c.log.Warn("no rule for building target", "target", target)
		return false
	}
	c.tracker.MarkRunning(rule.Targets)
	jobID := c.jobCounter
	c.jobCounter++
	c.jobTargets[jobID] = rule.Targets
	c.log.Debug("starting job", "job", jobID, "target", target)
	if len(rule.Prereqs) > 0 {
		dep := newClient(jobID)
		dep.pending = slices.Clone(rule.Prereqs)
		dep.delayed = rule
		*e = c.clients.InsertBefore(dep, *e)
		return true
	}
	return c.runScript(jobID, rule)
}

// runScript spawns the shell for rule under jobID. The record shared by
// the rule's targets is replaced with a fresh one holding the static
// prerequisites plus everything previously recorded, and sub-requests
// made by the script will extend it with dynamic edges.
func (c *Coordinator) runScript(jobID int, rule *domain.Rule) bool {
	if c.opts.ShowTargets {
		fmt.Fprintf(c.out, "Building %s\n", strings.Join(rule.Targets, " "))
	}

	rec := domain.NewDependencyRecord(rule.Targets, rule.Prereqs)
	for _, target := range rule.Targets {
		if old, ok := c.deps.Lookup(target); ok {
			rec.MergePrereqs(old)
		}
	}
	for _, target := range rule.Targets {
		c.deps.Bind(target, rec)
	}

	script := domain.PrepareScript(rule, c.rules.Vars)
	env := []string{
		domain.EnvSocket + "=" + c.listener.Addr(),
		domain.EnvJobID + "=" + strconv.Itoa(jobID),
	}
	proc, err := c.executor.Start(script, rule.Targets, env, c.opts.EchoScripts)
	if err != nil {
		c.log.Error(err)
		c.completeJob(jobID, false)
		return false
	}
	c.runningJobs++
	c.reapers.Go(func() error {
		c.completions <- completion{jobID: jobID, ok: proc.Wait() == nil}
		return nil
	})
	return true
}

// completeJob settles the bookkeeping of a finished or aborted job. A
// failed job leaves no partial outputs behind: every declared target is
// unlinked so the next run sees it missing and retries.
func (c *Coordinator) completeJob(jobID int, success bool) {
	targets, ok := c.jobTargets[jobID]
	if !ok {
		return
	}
	delete(c.jobTargets, jobID)
	c.log.Debug("completing job", "job", jobID, "success", success)
	if success {
		for _, target := range targets {
			c.tracker.Update(target)
		}
		return
	}
	c.log.Warn("failed to build", "targets", strings.Join(targets, " "))
	for _, target := range targets {
		c.tracker.MarkFailed(target)
		_ = os.Remove(target)
	}
}

// completeRequest finishes one client. A dependency client that settled
// successfully spawns its deferred script, unless the recheck downgrade
// shows the targets were never truly obsolete, in which case the job is
// reaped as an untouched success. Socket clients get their verdict
// byte. A failed original request marks the whole run as failed.
func (c *Coordinator) completeRequest(cl *client, success bool) {
	switch {
	case cl.delayed != nil:
		if !success {
			c.completeJob(cl.jobID, false)
		} else if c.tracker.StillNeedsRebuild(cl.delayed.Targets[0]) {
			c.runScript(cl.jobID, cl.delayed)
		} else {
			c.completeJob(cl.jobID, true)
		}
	case cl.reply != nil:
		cl.reply(success)
		c.waitingJobs--
	}
	if cl.jobID < 0 && !success {
		c.failure = true
	}
}

// acceptRequest queues a sub-request sent by a running script. The
// requested targets become dynamic prerequisites of the requesting
// job's record, so the next save remembers edges only the script knows
// about. A request naming an unknown job is answered with failure.
func (c *Coordinator) acceptRequest(req ports.BuildRequest) {
	targets, ok := c.jobTargets[req.JobID]
	if !ok {
		c.log.Warn("request from unknown job", "job", req.JobID)
		req.Reply(false)
		return
	}
	c.log.Debug("accepted request", "job", req.JobID,
		"targets", strings.Join(req.Targets, " "))
	cl := newClient(req.JobID)
	cl.pending = req.Targets
	cl.reply = req.Reply
	c.clients.PushFront(cl)
	rec := c.deps.Ensure(targets[0])
	for _, target := range req.Targets {
		rec.AddPrereq(target)
	}
	c.waitingJobs++
}
