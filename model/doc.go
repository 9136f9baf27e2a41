// Package model defines the provider‑agnostic abstractions used by agents to
// drive text generation inside AgentDesk.
//
// Core goals:
//   - Keep a single call shape (prompt in, Response out) for every backend
//   - Normalize backend specific token / model fields into Response
//   - Provide a typed error taxonomy (configuration, unknown provider, upstream)
//   - Facilitate lightweight mocking for tests (MockProvider)
//
// Concrete backends (ollama, openai, dify, anthropic) live in sub packages and
// implement Provider so higher layers (router, agents) stay decoupled from
// vendor SDKs and wire formats.
package model
