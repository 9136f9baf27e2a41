// Package testutil contains helpers used across tests to reduce boilerplate
// when standing up fake generation / search backends and asserting how many
// network calls were made. These helpers are not intended for production usage.
package testutil
