// Package prompt assembles backend-ready prompt strings for each agent kind.
//
// Builders are pure: the same input always yields the same prompt. Every
// prompt ends with the AssistantCue line so the backend knows to start
// generating.
package prompt

import (
	"fmt"

	"github.com/hupe1980/agentdesk/internal/util"
	"github.com/hupe1980/agentdesk/memory"
	"github.com/hupe1980/agentdesk/search"
)

// AssistantCue terminates every prompt.
const AssistantCue = "Assistant:"

// DefaultSystemPrompt is used by conversational agents without a configured
// system prompt.
const DefaultSystemPrompt = "You are a helpful AI assistant."

var chatTmpl = util.MustParse("chat", `System: {{.System}}
{{range $i, $t := .History}}User {{inc $i}}: {{$t.UserMessage}}
Assistant {{inc $i}}: {{$t.AgentMessage}}
{{end}}User: {{.Message}}
`+AssistantCue)

// ChatInput is the data for Chat.
type ChatInput struct {
	System  string
	History []memory.Turn
	Message string
}

// Chat builds a conversational prompt: the system instruction, the prior
// turns numbered from oldest to newest, the current message and the cue.
func Chat(in ChatInput) (string, error) {
	if in.System == "" {
		in.System = DefaultSystemPrompt
	}
	return util.Execute(chatTmpl, in)
}

var codeTmpl = util.MustParse("code", `System: You are a professional {{.Language}} programmer. Write high-quality code for the user's request.

Requirements:
1. Keep the code concise, efficient and readable
2. Add the necessary comments
3. Follow best practices
4. If a specific framework is involved, use {{if .Framework}}{{.Framework}}{{else}}the one the user names{{end}}
5. Provide a complete, runnable example

Reply in markdown and put code in fenced blocks.
{{if .HasRequirements}}Requirements: {{.Requirements}}
{{end}}{{if .HasConstraints}}Constraints: {{.Constraints}}
{{end}}User: {{.Message}}
`+AssistantCue)

// CodeInput is the data for Code. Context is the caller supplied map; its
// "requirements" and "constraints" keys are rendered when present.
type CodeInput struct {
	Language  string
	Framework string
	Context   map[string]any
	Message   string
}

// Code builds a code generation prompt.
func Code(in CodeInput) (string, error) {
	data := struct {
		Language, Framework, Message    string
		Requirements, Constraints       string
		HasRequirements, HasConstraints bool
	}{
		Language:  in.Language,
		Framework: in.Framework,
		Message:   in.Message,
	}
	if data.Language == "" {
		data.Language = "python"
	}
	if v, ok := in.Context["requirements"]; ok {
		data.HasRequirements = true
		data.Requirements = fmt.Sprint(v)
	}
	if v, ok := in.Context["constraints"]; ok {
		data.HasConstraints = true
		data.Constraints = fmt.Sprint(v)
	}
	return util.Execute(codeTmpl, data)
}

var searchTmpl = util.MustParse("search", `Answer the user's question using the search results below.

User question: {{.Message}}

Search results:
{{range .Results}}- {{.Title}}: {{.Snippet}}
{{end}}
Answer accurately and helpfully based on the search results. If they are not enough to answer the question, say so.
`+AssistantCue)

var noResultsTmpl = util.MustParse("search_empty", `User question: {{.Message}}

{{.Notice}} No search results are available. Tell the user that nothing was found and give a suitable reply without inventing sources.
`+AssistantCue)

// SearchInput is the data for Search.
type SearchInput struct {
	Message string
	Query   string
	Results []search.Result
	// Found is false when the search produced nothing usable.
	Found bool
}

// Search builds the summarization prompt for a search agent. When nothing
// was found it states the empty outcome explicitly instead of listing any.
func Search(in SearchInput) (string, error) {
	if !in.Found || len(in.Results) == 0 {
		return util.Execute(noResultsTmpl, struct{ Message, Notice string }{
			Message: in.Message,
			Notice:  search.NoResultsMessage(in.Query),
		})
	}
	return util.Execute(searchTmpl, in)
}
