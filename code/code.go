// Package code extracts fenced code blocks from generated markdown text.
package code

import "strings"

const fence = "```"

// Block is a fenced code segment. Language is the tag written after the
// opening fence and may be empty; Code is the body without the fence lines.
type Block struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Extract scans text line by line and returns every closed fenced block in
// order of appearance.
//
// A line starting with three backticks opens a block, and the rest of that
// line (trimmed) is its language. The next fence line closes it, whatever
// follows the backticks there; fences do not nest. Body lines are kept
// verbatim, blank lines included, and joined with "\n". A block still open
// at the end of text is dropped.
func Extract(text string) []Block {
	var (
		blocks   []Block
		inside   bool
		language string
		body     []string
	)
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, fence) {
			if !inside {
				inside = true
				language = strings.TrimSpace(line[len(fence):])
				body = body[:0]
				continue
			}
			inside = false
			blocks = append(blocks, Block{Language: language, Code: strings.Join(body, "\n")})
			continue
		}
		if inside {
			body = append(body, line)
		}
	}
	return blocks
}

// Languages returns the language tags of blocks in order, empty tags included.
func Languages(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Language
	}
	return out
}
