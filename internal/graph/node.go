package graph

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/maestro/internal/ctxlog"
	"github.com/vk/maestro/internal/task"
)

// State represents the execution state of a node. Transitions are monotonic:
// Pending -> Running -> {Completed, Failed}. There is no way back to Pending.
type State int32

const (
	// Pending indicates the node has not started yet.
	Pending State = iota
	// Running indicates the node's operation is in flight.
	Running
	// Completed indicates the node finished without a hard failure.
	Completed
	// Failed indicates the node's operation errored or timed out.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Node wraps exactly one task instance for the duration of a single
// orchestration run. It owns the run-at-most-once state machine; the
// orchestrator only ever calls RunOnce and reads the accessors.
type Node struct {
	task task.Task
	// deps is populated at build time and immutable afterwards.
	deps []*Node
	// strict escalates a logical false result to Failed.
	strict bool

	// state is managed atomically; the Pending->Running CAS in RunOnce is
	// the only guard needed against double execution.
	state atomic.Int32

	// err and elapsed are written by the single in-flight RunOnce before
	// the final state is stored, so reading them after observing a final
	// state is safe.
	err     error
	elapsed time.Duration

	finishOnce sync.Once
	finished   []func(n *Node, success bool)
}

// Task returns the wrapped task.
func (n *Node) Task() task.Task { return n.task }

// Name returns the wrapped task's name.
func (n *Node) Name() string { return n.task.Name() }

// Dependencies returns the node's dependency list in declaration order.
// The returned slice must not be mutated.
func (n *Node) Dependencies() []*Node { return n.deps }

// State atomically retrieves the node's execution state.
func (n *Node) State() State { return State(n.state.Load()) }

// Err returns the error recorded by a failed run, if any.
func (n *Node) Err() error { return n.err }

// Elapsed returns how long the node's operation ran.
func (n *Node) Elapsed() time.Duration { return n.elapsed }

// OnFinished registers a callback fired exactly once when the node reaches a
// final state. Registration must happen before the run starts; there is no
// unsubscription, the observer list dies with the run.
func (n *Node) OnFinished(fn func(n *Node, success bool)) {
	n.finished = append(n.finished, fn)
}

// ReadyToRun reports whether every dependency has completed. Disabled
// dependencies are excluded from the readiness accounting, so they do not
// starve their dependents.
func (n *Node) ReadyToRun() bool {
	for _, dep := range n.deps {
		if !dep.task.Enabled() {
			continue
		}
		if dep.State() != Completed {
			return false
		}
	}
	return true
}

// opResult carries the outcome of the task operation through the race
// against the timeout timer.
type opResult struct {
	ok  bool
	err error
}

// RunOnce executes the node's task if it is ready, enabled and still
// pending. Any other state makes the call a no-op, which also makes
// re-running a finished node impossible without building a new graph.
func (n *Node) RunOnce(ctx context.Context) {
	if !n.task.Enabled() || !n.ReadyToRun() {
		return
	}
	if !n.state.CompareAndSwap(int32(Pending), int32(Running)) {
		return
	}

	logger := ctxlog.FromContext(ctx).With("task", n.Name())
	logger.Debug("Task starting.", "timeout", n.task.Timeout(), "thread_safe", n.task.ThreadSafe())

	start := time.Now()
	res := n.runOperation(ctx)
	n.elapsed = time.Since(start)

	switch {
	case res.err != nil:
		n.err = res.err
		n.state.Store(int32(Failed))
		logger.Error("Task failed.", "error", res.err, "elapsed", n.elapsed)
		n.notifyFinished(false)
	case !res.ok && n.strict:
		n.err = ErrLogicalFailure
		n.state.Store(int32(Failed))
		logger.Error("Task reported failure, strict mode escalates it.", "elapsed", n.elapsed)
		n.notifyFinished(false)
	case !res.ok:
		// A logical false result is deliberately lenient: it is logged,
		// but the node still counts as completed so dependents unblock.
		n.state.Store(int32(Completed))
		logger.Warn("Task reported failure; marking it completed anyway.", "elapsed", n.elapsed)
		n.notifyFinished(true)
	default:
		n.state.Store(int32(Completed))
		logger.Debug("Task completed.", "elapsed", n.elapsed)
		n.notifyFinished(true)
	}
}

// runOperation invokes the task and, when a timeout is configured, races it
// against a timer. A stale result arriving after the timer wins is
// discarded; the operation itself is not interrupted.
func (n *Node) runOperation(ctx context.Context) opResult {
	resCh := make(chan opResult, 1)
	go func() {
		ok, err := n.task.Run(ctx)
		resCh <- opResult{ok: ok, err: err}
	}()

	timeout := n.task.Timeout()
	if timeout <= 0 {
		return <-resCh
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-resCh:
		return res
	case <-timer.C:
		return opResult{err: fmt.Errorf("task %q: %w after %s", n.Name(), ErrTimeout, timeout)}
	}
}

// notifyFinished fires the completion callbacks exactly once per run.
func (n *Node) notifyFinished(success bool) {
	n.finishOnce.Do(func() {
		for _, fn := range n.finished {
			fn(n, success)
		}
	})
}
