package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns prefix + "_" + the first eight hex digits of a random UUID,
// e.g. "chat_1f9c2a7b". An empty prefix yields just the digits.
func NewID(prefix string) string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if prefix == "" {
		return short
	}
	return prefix + "_" + short
}
