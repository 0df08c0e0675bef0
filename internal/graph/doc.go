// Package graph builds and validates the task dependency graph and owns the
// per-node execution state machine. A Builder accumulates declared edges,
// rejecting any edge that would close a cycle, and materializes the node set
// that the orchestrator schedules.
package graph
