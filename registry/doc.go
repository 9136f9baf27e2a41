// Package registry holds the live agents of a process keyed by handle.
package registry
