package session

import (
	"testing"

	"github.com/forge-ide/forge-agent/internal/agent"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir(), "default")
	require.NoError(t, err)

	sess, err := store.New("/ws", "openai", "gpt-5")
	require.NoError(t, err)
	sess.AppendMessage(agent.Message{Role: agent.RoleUser, Content: "fix the failing test\nextra detail"})
	require.NoError(t, store.Save(sess))

	loaded, err := store.Load(sess.ID)
	require.NoError(t, err)
	require.Equal(t, sess.ID, loaded.ID)
	require.Equal(t, "/ws", loaded.Workspace)
	require.Equal(t, "openai", loaded.Provider)
	require.Equal(t, "gpt-5", loaded.Model)
	require.Equal(t, "fix the failing test", loaded.Title)
	require.Len(t, loaded.Snapshot(), 1)
}

func TestStore_LoadMissingReturnsSessionNotFound(t *testing.T) {
	store, err := NewStore(t.TempDir(), "default")
	require.NoError(t, err)

	_, err = store.Load("does-not-exist")
	require.Error(t, err)
	require.ErrorIs(t, err, agent.ErrSessionNotFound)
}

func TestStore_LoadLatestPicksMostRecentlyUpdated(t *testing.T) {
	store, err := NewStore(t.TempDir(), "default")
	require.NoError(t, err)

	older, err := store.New("/ws", "openai", "gpt-5")
	require.NoError(t, err)
	newer, err := store.New("/ws", "openai", "gpt-5")
	require.NoError(t, err)

	newer.AppendMessage(agent.Message{Role: agent.RoleUser, Content: "second session wins"})
	require.NoError(t, store.Save(newer))
	require.NoError(t, store.Save(older))

	latest, err := store.LoadLatest("/ws")
	require.NoError(t, err)
	require.Equal(t, newer.ID, latest.ID)
}

func TestStore_DeleteRemovesSession(t *testing.T) {
	store, err := NewStore(t.TempDir(), "default")
	require.NoError(t, err)

	sess, err := store.New("/ws", "openai", "gpt-5")
	require.NoError(t, err)
	require.NoError(t, store.Delete(sess.ID))

	_, err = store.Load(sess.ID)
	require.ErrorIs(t, err, agent.ErrSessionNotFound)
}

func TestStore_List(t *testing.T) {
	store, err := NewStore(t.TempDir(), "default")
	require.NoError(t, err)

	_, err = store.New("/ws-a", "openai", "gpt-5")
	require.NoError(t, err)
	_, err = store.New("/ws-b", "anthropic", "claude")
	require.NoError(t, err)

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
}
