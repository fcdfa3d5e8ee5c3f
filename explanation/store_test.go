package explanation_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlessandroCarella/treescope/explanation"
)

func newStoreSession(t *testing.T) *explanation.Session {
	t.Helper()
	e, err := explanation.Read(strings.NewReader(payloadJSON))
	require.NoError(t, err)
	s, err := explanation.NewSession(e)
	require.NoError(t, err)
	return s
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := explanation.NewMemorySessionStore()
	defer store.Close(ctx)

	s := newStoreSession(t)
	require.NoError(t, store.Create(ctx, s))
	require.NotEmpty(t, s.ID)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	missing, err := store.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Store(ctx, s))
	require.NoError(t, store.Delete(ctx, s))
	got, err = store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySessionStoreAssignsID(t *testing.T) {
	ctx := context.Background()
	store := explanation.NewMemorySessionStore()
	s := newStoreSession(t)
	s.ID = ""
	require.NoError(t, store.Create(ctx, s))
	assert.NotEmpty(t, s.ID)
}

func TestMemorySessionStoreHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := explanation.NewMemorySessionStore()
	s := newStoreSession(t)
	assert.ErrorIs(t, store.Create(ctx, s), context.Canceled)
}
