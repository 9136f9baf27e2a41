package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("no markers", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers", out)

	out, err = RenderTemplate(`{{default "python" .lang | upper}} <{{.x}}>`, map[string]any{"x": "a&b"})
	require.NoError(t, err)
	assert.Equal(t, "PYTHON <a&b>", out)

	_, err = RenderTemplate("{{.x", nil)
	assert.Error(t, err)

	out, err = RenderTemplate(`{{join ", " .tags | lower}}`, map[string]any{"tags": []string{"Go", "SQL"}})
	require.NoError(t, err)
	assert.Equal(t, "go, sql", out)
}

func TestParseTemplate(t *testing.T) {
	_, err := ParseTemplate(`{{upper (default "en" .lang)}}`)
	require.NoError(t, err)

	_, err = ParseTemplate(`{{nosuchfunc .x}}`)
	assert.Error(t, err)
}

func TestMustParseAndExecute(t *testing.T) {
	tmpl := MustParse("list", `{{range $i, $s := .}}{{inc $i}}.{{$s}} {{end}}`)
	out, err := Execute(tmpl, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "1.a 2.b ", out)

	assert.Panics(t, func() { MustParse("bad", "{{") })
}

func TestNewID(t *testing.T) {
	id := NewID("chat")
	assert.Regexp(t, regexp.MustCompile(`^chat_[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, NewID("chat"))
	assert.Len(t, NewID(""), 8)
}
