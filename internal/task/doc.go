// Package task defines the contract between the orchestrator and the units
// of work it schedules, plus a small constructor for building tasks from
// plain functions.
package task
