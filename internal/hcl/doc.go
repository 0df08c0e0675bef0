// Package hcl implements the config.Loader interface for HCL plan files.
package hcl
