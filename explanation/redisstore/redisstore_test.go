package redisstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlessandroCarella/treescope/explanation"
	"github.com/AlessandroCarella/treescope/explanation/redisstore"
	"github.com/AlessandroCarella/treescope/feature"
	"github.com/AlessandroCarella/treescope/tree"
)

func newSession(t *testing.T) *explanation.Session {
	t.Helper()
	s, err := explanation.NewSession(&explanation.Explanation{
		TreeNodes: []tree.Node{
			{ID: 0, FeatureName: "x", Threshold: tree.Float(5), LeftChild: tree.Int(1), RightChild: tree.Int(2)},
			{ID: 1, IsLeaf: true, ClassLabel: "A"},
			{ID: 2, IsLeaf: true, ClassLabel: "B"},
		},
		EncodedInstance: feature.Instance{"x": 3},
	})
	require.NoError(t, err)
	return s
}

func newStore(t *testing.T) explanation.SessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return redisstore.New(rc, "treescope:sessions", explanation.JSONCodec{})
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	defer store.Close(ctx)

	s := newSession(t)
	require.NoError(t, store.Create(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.Explanation.TreeNodes, got.Explanation.TreeNodes)
	// Derived state is rebuilt on load.
	assert.Equal(t, []int{0, 1}, got.States[tree.KindClassic].InstancePath())

	require.NoError(t, store.Delete(ctx, s))
	got, err = store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	got, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreCreateAvoidsCollisions(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	s := newSession(t)
	require.NoError(t, store.Create(ctx, s))
	// A second create with the same id gets a fresh one instead of
	// overwriting the stored session.
	other := newSession(t)
	other.ID = s.ID
	require.NoError(t, store.Create(ctx, other))
	assert.NotEqual(t, s.ID, other.ID)
}

func TestRedisStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	s := newSession(t)
	require.NoError(t, store.Create(ctx, s))
	s.Explanation.EncodedInstance = feature.Instance{"x": 9}
	require.NoError(t, store.Store(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []int{0, 2}, got.States[tree.KindClassic].InstancePath())
}
