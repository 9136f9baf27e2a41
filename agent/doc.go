// Package agent implements the three agent kinds behind one Process
// operation:
//
//   - Chat: conversational agent with a bounded history window
//   - Code: code generation agent that extracts fenced blocks from the answer
//   - Search: queries search engines and asks the model to summarize findings
//
// Every agent is bound to a single model.Provider at construction time. A
// provider error is returned unchanged from Process; agents never retry.
// Use New to construct an agent from a kind and a loosely typed
// configuration map, or the NewChat / NewCode / NewSearch constructors
// directly.
package agent
