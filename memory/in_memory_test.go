package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func TestInMemoryStore_AppendAndLoad(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	history, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	err = store.Append(ctx, "s1", []core.Message{
		core.NewUserMessage("hi"),
		core.NewAssistantMessage("hello"),
	})
	require.NoError(t, err)

	history, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Text())
}

func TestInMemoryStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, "s1", []core.Message{core.NewUserMessage("one")}))
	require.NoError(t, store.Append(ctx, "s2", []core.Message{core.NewUserMessage("two")}))

	h1, _ := store.Load(ctx, "s1")
	h2, _ := store.Load(ctx, "s2")
	assert.Len(t, h1, 1)
	assert.Len(t, h2, 1)
	assert.NotEqual(t, h1[0].Text(), h2[0].Text())
}

func TestInMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.Append(ctx, "s1", []core.Message{core.NewUserMessage("hi")}))

	loaded, _ := store.Load(ctx, "s1")
	loaded[0] = core.NewUserMessage("tampered")

	fresh, _ := store.Load(ctx, "s1")
	assert.Equal(t, "hi", fresh[0].Text())
}

func TestInMemoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.Append(ctx, "s1", []core.Message{core.NewUserMessage("hi")}))

	require.NoError(t, store.Clear(ctx, "s1"))

	history, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Zero(t, store.Len("s1"))
}
