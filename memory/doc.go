// Package memory holds the bounded conversation window owned by a single
// conversational agent. History lives for the lifetime of the process only.
package memory
