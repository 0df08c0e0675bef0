// Package orchestrator schedules a built task graph in dependency order
// using wave-based unbounded fan-out: every node whose dependencies have
// completed is launched concurrently, a barrier joins the wave, and the
// ready set is recomputed. Network-gated tasks are deferred to a detached
// retry loop until a connectivity probe confirms a connection.
//
// Failure is isolated: a failed node never aborts its siblings, it merely
// starves its dependents, which stay pending forever. The only aggregate
// signal is the run-finished event's success flag.
package orchestrator
