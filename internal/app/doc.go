// Package app wires the application together: logger, registry, plan
// loading, graph assembly and the orchestrator lifecycle.
package app
