package agentdesk

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/agentdesk/agent"
	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/internal/testutil"
	"github.com/hupe1980/agentdesk/model"
	"github.com/hupe1980/agentdesk/router"
	"github.com/hupe1980/agentdesk/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDesk(t *testing.T, optFns ...func(o *Options)) (*Desk, *model.MockProvider) {
	t.Helper()
	mock := model.NewMockProvider("mock", "mock-model")
	mock.SetFallback(func(string) string { return "hi there" })
	r := router.New(router.Config{})
	r.Register(mock)
	return New(r, optFns...), mock
}

func TestCreateAndProcess(t *testing.T) {
	ctx := context.Background()
	desk, mock := newDesk(t)

	id, err := desk.CreateAgent(ctx, "chat", "helper", "mock", map[string]any{"max_history": 3})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "chat_"))

	res, err := desk.Process(ctx, id, "Hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "hi there", res.Response)
	assert.Equal(t, id, res.AgentID)
	assert.Len(t, mock.Prompts(), 1)

	history, err := desk.History(id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Hello", history[0].UserMessage)

	require.NoError(t, desk.ClearHistory(id))
	history, err = desk.History(id)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCreateAgent_Errors(t *testing.T) {
	ctx := context.Background()
	desk, _ := newDesk(t)

	_, err := desk.CreateAgent(ctx, "poet", "x", "mock", nil)
	assert.True(t, errors.Is(err, model.ErrConfiguration))

	_, err = desk.CreateAgent(ctx, "chat", "x", "gemini", nil)
	var upe *model.UnknownProviderError
	assert.ErrorAs(t, err, &upe)

	assert.Empty(t, desk.ListAgents())
}

func TestCreateAgent_MissingCredentialNoNetwork(t *testing.T) {
	client, counter := testutil.NewCountingClient()
	desk := New(router.New(router.Config{HTTPClient: client}))

	_, err := desk.CreateAgent(context.Background(), "chat", "x", router.OpenAI, nil)
	assert.True(t, errors.Is(err, model.ErrConfiguration))
	assert.Zero(t, counter.Calls())
}

func TestUnknownHandle(t *testing.T) {
	desk, _ := newDesk(t)

	_, err := desk.Process(context.Background(), "chat_missing", "hi", nil)
	assert.ErrorIs(t, err, ErrAgentNotFound)
	_, err = desk.History("chat_missing")
	assert.ErrorIs(t, err, ErrAgentNotFound)
	assert.ErrorIs(t, desk.DeleteAgent(context.Background(), "chat_missing"), ErrAgentNotFound)
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	desk, _ := newDesk(t)

	chatID, err := desk.CreateAgent(ctx, "chat", "a", "mock", nil)
	require.NoError(t, err)
	codeID, err := desk.CreateAgent(ctx, "code", "b", "mock", map[string]any{"language": "go"})
	require.NoError(t, err)

	infos := desk.ListAgents()
	require.Len(t, infos, 2)
	assert.Equal(t, chatID, infos[0].ID)
	assert.Equal(t, agent.KindCode, infos[1].Kind)

	history, err := desk.History(codeID)
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, desk.DeleteAgent(ctx, chatID))
	assert.Len(t, desk.ListAgents(), 1)
}

func TestPersistAndRestore(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "agents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	desk, _ := newDesk(t, func(o *Options) { o.Metadata = store })
	id, err := desk.CreateAgent(ctx, "chat", "helper", "mock", map[string]any{"model_name": "other", "max_history": 2})
	require.NoError(t, err)

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "other", rec.Model)
	assert.Equal(t, "mock", rec.Provider)

	fresh, _ := newDesk(t, func(o *Options) { o.Metadata = store })
	n, err := fresh.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	a, err := fresh.Agent(id)
	require.NoError(t, err)
	assert.Equal(t, "other", a.Info().Model)

	require.NoError(t, fresh.DeleteAgent(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, core.ErrRecordNotFound)
}

func TestRestore_SkipsUnbuildable(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "agents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Save(ctx, core.AgentRecord{ID: "chat_1", Name: "a", Kind: "chat", Provider: router.OpenAI, Active: true}))

	desk, _ := newDesk(t, func(o *Options) { o.Metadata = store })
	n, err := desk.Restore(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, desk.ListAgents())
}

func TestProviders(t *testing.T) {
	desk, _ := newDesk(t)
	assert.Contains(t, desk.Providers(), router.Ollama)
	assert.Contains(t, desk.Providers(), "mock")
}
