package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetline/internal/kv"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func backends(t *testing.T) map[string]kv.Store {
	t.Helper()
	ctx := context.Background()
	sqlite, err := kv.Open(ctx, kv.Options{Driver: kv.DriverSQLite, Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]kv.Store{
		"memory":   kv.NewMemory(),
		"sqlite":   sqlite,
		"prefixed": kv.WithPrefix(kv.NewMemory(), "fleet-a:"),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			in := []record{{ID: "s1", Name: "Ever Given"}, {ID: "s2", Name: "MSC Oscar"}}
			require.NoError(t, kv.Save(ctx, s, kv.KeyShips, in))

			var out []record
			ok, err := kv.Load(ctx, s, kv.KeyShips, &out)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, in, out)
		})
	}
}

func TestLoadAbsentAndDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var out record
			ok, err := kv.Load(ctx, s, kv.KeyCurrentUser, &out)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Save(ctx, s, kv.KeyCurrentUser, record{ID: "1"}))
			require.NoError(t, s.Delete(ctx, kv.KeyCurrentUser))
			require.NoError(t, s.Delete(ctx, kv.KeyCurrentUser))

			ok, err = kv.Load(ctx, s, kv.KeyCurrentUser, &out)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, kv.KeyJobs, []byte("{not json")))
			var out []record
			ok, err := kv.Load(ctx, s, kv.KeyJobs, &out)
			assert.True(t, ok)
			assert.True(t, errors.Is(err, kv.ErrMalformed))
		})
	}
}

func TestPrefixIsolatesKeys(t *testing.T) {
	ctx := context.Background()
	shared := kv.NewMemory()
	a := kv.WithPrefix(shared, "a:")
	b := kv.WithPrefix(shared, "b:")

	require.NoError(t, kv.Save(ctx, a, kv.KeyShips, []record{{ID: "s1"}}))
	var out []record
	ok, err := kv.Load(ctx, b, kv.KeyShips, &out)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = shared.Get(ctx, "a:"+kv.KeyShips)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := kv.Open(context.Background(), kv.Options{Driver: "etcd"})
	assert.Error(t, err)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := kv.Open(ctx, kv.Options{Workspace: dir})
	require.NoError(t, err)
	require.NoError(t, kv.Save(ctx, s, kv.KeyShips, []record{{ID: "s1", Name: "A"}}))
	require.NoError(t, s.Close())

	s, err = kv.Open(ctx, kv.Options{Workspace: dir})
	require.NoError(t, err)
	defer s.Close()
	var out []record
	ok, err := kv.Load(ctx, s, kv.KeyShips, &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []record{{ID: "s1", Name: "A"}}, out)
}
