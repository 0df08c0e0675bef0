// Package registry maps the runner and probe type names used in plan files
// to their Go implementations. Each application instance owns its own
// registry; modules contribute entries through the Module interface.
package registry
