package prompt

import (
	"strings"
	"testing"

	"github.com/hupe1980/agentdesk/memory"
	"github.com/hupe1980/agentdesk/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	out, err := Chat(ChatInput{
		System: "Be brief.",
		History: []memory.Turn{
			{UserMessage: "hi", AgentMessage: "hello"},
			{UserMessage: "how are you?", AgentMessage: "fine"},
		},
		Message: "bye",
	})
	require.NoError(t, err)
	assert.Equal(t, "System: Be brief.\n"+
		"User 1: hi\nAssistant 1: hello\n"+
		"User 2: how are you?\nAssistant 2: fine\n"+
		"User: bye\nAssistant:", out)
}

func TestChat_DefaultsAndNoHistory(t *testing.T) {
	out, err := Chat(ChatInput{Message: "{{.Secret}}"})
	require.NoError(t, err)
	assert.Equal(t, "System: "+DefaultSystemPrompt+"\nUser: {{.Secret}}\nAssistant:", out)
}

func TestCode(t *testing.T) {
	out, err := Code(CodeInput{
		Language:  "go",
		Framework: "gin",
		Context:   map[string]any{"requirements": "REST API", "constraints": 3},
		Message:   "write a handler",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "System: You are a professional go programmer."))
	assert.Contains(t, out, "4. If a specific framework is involved, use gin\n")
	assert.Contains(t, out, "5. Provide a complete, runnable example")
	assert.Contains(t, out, "Requirements: REST API\nConstraints: 3\nUser: write a handler\n")
	assert.True(t, strings.HasSuffix(out, "\n"+AssistantCue))
}

func TestCode_WithoutContext(t *testing.T) {
	out, err := Code(CodeInput{Message: "sort a list"})
	require.NoError(t, err)
	assert.Contains(t, out, "professional python programmer")
	assert.NotContains(t, out, "Requirements: ")
	assert.NotContains(t, out, "Constraints:")
	assert.True(t, strings.HasSuffix(out, "User: sort a list\n"+AssistantCue))
}

func TestSearch_WithResults(t *testing.T) {
	out, err := Search(SearchInput{
		Message: "what is go?",
		Query:   "go",
		Results: []search.Result{{Title: "Go", Snippet: "A language", URL: "https://go.dev"}},
		Found:   true,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "User question: what is go?")
	assert.Contains(t, out, "- Go: A language\n")
	assert.True(t, strings.HasSuffix(out, AssistantCue))
}

func TestSearch_NotFoundWinsOverResults(t *testing.T) {
	out, err := Search(SearchInput{
		Message: "what is go?",
		Query:   "go",
		Results: []search.Result{{Title: "Go", Snippet: "A language"}},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "No information found for 'go'.")
	assert.NotContains(t, out, "- Go: A language")
}

func TestSearch_EmptyResults(t *testing.T) {
	out, err := Search(SearchInput{Message: "find zzzqqqnotfound", Query: "zzzqqqnotfound"})
	require.NoError(t, err)
	assert.Contains(t, out, "No information found for 'zzzqqqnotfound'.")
	assert.NotContains(t, out, "Search results:")
	assert.True(t, strings.HasSuffix(out, AssistantCue))
}
