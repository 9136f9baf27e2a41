// Package core defines the persistent description of an agent and the small
// store interface used to keep those descriptions across restarts.
//
// Live agents (with their in-process conversation memory) are held by the
// registry package; core only covers the durable metadata. Implementations
// of MetadataStore live in their own packages (see store/sqlite).
package core
