package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vk/maestro/internal/connectivity"
	"github.com/vk/maestro/internal/ctxlog"
	"github.com/vk/maestro/internal/graph"
)

// DefaultRetryInterval is how long the connectivity retry loop sleeps
// between probes when no interval is configured.
const DefaultRetryInterval = 60 * time.Second

// ErrAlreadyStarted is returned by Start on a second call; an orchestrator
// is single-use and becomes inert once its run has started.
var ErrAlreadyStarted = errors.New("orchestrator already started")

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRetryInterval overrides the connectivity re-probe interval. The
// configuration layer is responsible for enforcing a sane minimum; tests
// rely on being able to pass very small values here.
func WithRetryInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.retryInterval = d
		}
	}
}

// Orchestrator drives one wave-based concurrent execution of a built task
// graph. The control logic (readiness computation, wave barriers, the
// retry loop) runs on a single goroutine per phase; only task operations
// within a wave execute concurrently.
type Orchestrator struct {
	id            uuid.UUID
	graph         *graph.Graph
	probes        *connectivity.Aggregator
	retryInterval time.Duration

	nodeObservers []func(n *graph.Node, success bool)
	runObservers  []func(success bool)

	started    atomic.Bool
	finishOnce sync.Once
}

// New builds an orchestrator over a built graph and a connectivity
// aggregator. The aggregator may be empty, in which case network-gated
// tasks can never start.
func New(g *graph.Graph, probes *connectivity.Aggregator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		id:            uuid.New(),
		graph:         g,
		probes:        probes,
		retryInterval: DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ID returns the unique identifier of this run.
func (o *Orchestrator) ID() uuid.UUID { return o.id }

// Graph returns the node set this orchestrator runs.
func (o *Orchestrator) Graph() *graph.Graph { return o.graph }

// OnNodeFinished registers a callback fired once per node when it reaches a
// final state. Must be called before Start. Callbacks for different nodes
// of the same wave may fire concurrently.
func (o *Orchestrator) OnNodeFinished(fn func(n *graph.Node, success bool)) {
	o.nodeObservers = append(o.nodeObservers, fn)
}

// OnFinished registers a callback fired exactly once when the whole run
// settles, with success true iff every enabled node completed. Must be
// called before Start. When the run enters the connectivity retry loop the
// callback may fire long after Start has returned, or never if
// connectivity never appears.
func (o *Orchestrator) OnFinished(fn func(success bool)) {
	o.runObservers = append(o.runObservers, fn)
}

// Handle is returned by Start. It lets the caller wait for the run to
// settle and tear down the detached connectivity retry loop.
type Handle struct {
	cancel  context.CancelFunc
	done    chan struct{}
	success atomic.Bool
}

// Done is closed once the run has settled (all waves exhausted, or the
// retry loop finished or was stopped).
func (h *Handle) Done() <-chan struct{} { return h.done }

// Stop cancels the detached retry loop, if one is running. The run then
// settles with its current node states; in-flight operations are not
// interrupted.
func (h *Handle) Stop() { h.cancel() }

// Success reports the overall run outcome. Only meaningful after Done is
// closed.
func (h *Handle) Success() bool { return h.success.Load() }

// Start executes the run. It returns once the initial wave loop stops
// making progress; if network-gated tasks remain and connectivity is
// absent, a detached retry loop keeps re-probing in the background and the
// finished event fires whenever it eventually settles.
func (o *Orchestrator) Start(ctx context.Context) (*Handle, error) {
	if !o.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}

	logger := ctxlog.FromContext(ctx).With("run_id", o.id.String())
	ctx = ctxlog.WithLogger(ctx, logger)

	handle := &Handle{
		cancel: func() {},
		done:   make(chan struct{}),
	}
	o.wireNodeObservers()

	needsNetwork := o.graph.RequiresNetwork()
	hasInternet := false
	if needsNetwork {
		if o.probes.Empty() {
			logger.Warn("Tasks require network connectivity but no probes are configured; treating the network as offline.")
		} else {
			hasInternet = o.probes.HasConnectivity(ctx)
			logger.Debug("Initial connectivity probe.", "online", hasInternet)
		}
	}

	logger.Info("Run starting.", "nodes", o.graph.Len(), "needs_network", needsNetwork)
	o.runWaves(ctx, hasInternet)

	if !o.graph.AllDone() && !hasInternet && o.hasDeferredNetworkWork() {
		// Detach the retry loop from the caller's context so Start can
		// return; the handle is the only way to cancel it.
		retryCtx, cancel := context.WithCancel(ctxlog.WithLogger(context.Background(), logger))
		handle.cancel = cancel
		go o.retryLoop(retryCtx, handle)
		return handle, nil
	}

	o.finish(ctx, handle)
	return handle, nil
}

// wireNodeObservers fans each node's completion event out to the
// orchestrator-level observers.
func (o *Orchestrator) wireNodeObservers() {
	if len(o.nodeObservers) == 0 {
		return
	}
	for _, n := range o.graph.Nodes() {
		n.OnFinished(func(n *graph.Node, success bool) {
			for _, fn := range o.nodeObservers {
				fn(n, success)
			}
		})
	}
}

// runWaves repeatedly computes the ready set and launches it as one
// concurrent wave, until everything is done or no node can start. Within a
// wave, thread-safe tasks run in their own goroutines while the rest run
// sequentially on this goroutine; the wave ends when both groups finish.
func (o *Orchestrator) runWaves(ctx context.Context, hasInternet bool) {
	logger := ctxlog.FromContext(ctx)
	wave := 0
	for {
		if o.graph.AllDone() {
			return
		}
		ready := o.readyNodes(hasInternet)
		if len(ready) == 0 {
			o.logStall(ctx, hasInternet)
			return
		}

		wave++
		logger.Debug("Launching wave.", "wave", wave, "size", len(ready))

		var wg sync.WaitGroup
		for _, n := range ready {
			if n.Task().ThreadSafe() {
				wg.Add(1)
				go func(n *graph.Node) {
					defer wg.Done()
					n.RunOnce(ctx)
				}(n)
			}
		}
		for _, n := range ready {
			if !n.Task().ThreadSafe() {
				n.RunOnce(ctx)
			}
		}
		wg.Wait()
	}
}

// readyNodes collects every node that may start right now: still pending,
// enabled, all dependencies completed, and not gated on a network we don't
// have.
func (o *Orchestrator) readyNodes(hasInternet bool) []*graph.Node {
	var ready []*graph.Node
	for _, n := range o.graph.Nodes() {
		if n.State() != graph.Pending || !n.Task().Enabled() {
			continue
		}
		if !n.ReadyToRun() {
			continue
		}
		if n.Task().RequiresNetwork() && !hasInternet {
			continue
		}
		ready = append(ready, n)
	}
	return ready
}

// hasDeferredNetworkWork reports whether an enabled pending node is gated
// directly on network connectivity. Such nodes (and anything starved behind
// them) are what the retry loop exists for.
func (o *Orchestrator) hasDeferredNetworkWork() bool {
	for _, n := range o.graph.Nodes() {
		if n.Task().Enabled() && n.State() == graph.Pending && n.Task().RequiresNetwork() {
			return true
		}
	}
	return false
}

// logStall emits the diagnostic for a wave that computed an empty ready set
// while work remains, naming the nodes that are deferred on connectivity
// and the ones starved by an unfinished or failed dependency.
func (o *Orchestrator) logStall(ctx context.Context, hasInternet bool) {
	var deferred, starved []string
	for _, n := range o.graph.Nodes() {
		if n.State() != graph.Pending || !n.Task().Enabled() {
			continue
		}
		if n.ReadyToRun() && n.Task().RequiresNetwork() && !hasInternet {
			deferred = append(deferred, n.Name())
		} else {
			starved = append(starved, n.Name())
		}
	}
	if len(deferred) == 0 && len(starved) == 0 {
		return
	}
	ctxlog.FromContext(ctx).Warn("Run stalled: no task can start while work remains.",
		"deferred_on_network", deferred,
		"starved_or_blocked", starved,
	)
}

// finish fires the run-finished event exactly once and settles the handle.
func (o *Orchestrator) finish(ctx context.Context, h *Handle) {
	o.finishOnce.Do(func() {
		success := o.graph.Succeeded()
		h.success.Store(success)
		ctxlog.FromContext(ctx).Info("Run finished.", "success", success)
		for _, fn := range o.runObservers {
			fn(success)
		}
		close(h.done)
	})
}
