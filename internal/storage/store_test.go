package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func backends(t *testing.T) map[string]ObjectStore {
	fs, err := NewFileStore(t.TempDir(), quietLogger())
	require.NoError(t, err)
	return map[string]ObjectStore{
		"memory":     NewMemoryStore(),
		"filesystem": fs,
		"limited":    NewRateLimitedStore(NewMemoryStore(), 1000, 10),
	}
}

func TestObjectStore_PutGetOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "a/b/c.csv", []byte("one")))
			data, err := store.Get(ctx, "a/b/c.csv")
			require.NoError(t, err)
			assert.Equal(t, "one", string(data))

			require.NoError(t, store.Put(ctx, "a/b/c.csv", []byte("two")))
			data, err = store.Get(ctx, "a/b/c.csv")
			require.NoError(t, err)
			assert.Equal(t, "two", string(data))
		})
	}
}

func TestObjectStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "nope/missing.csv")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestObjectStore_ListPrefixSorted(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"x/2.csv", "x/1.csv", "y/1.csv", "x/sub/_SUCCESS"} {
				require.NoError(t, store.Put(ctx, k, nil))
			}
			keys, err := store.List(ctx, "x/")
			require.NoError(t, err)
			assert.Equal(t, []string{"x/1.csv", "x/2.csv", "x/sub/_SUCCESS"}, keys)

			all, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 4)
		})
	}
}

func TestObjectStore_DeleteAndExists(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "m/_SUCCESS", nil))

			ok, err := Exists(ctx, store, "m/_SUCCESS")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, store.Delete(ctx, "m/_SUCCESS"))
			require.NoError(t, store.Delete(ctx, "m/_SUCCESS"))

			ok, err = Exists(ctx, store, "m/_SUCCESS")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestObjectStore_RejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "/abs.csv", "../escape.csv", "a/../../b"} {
				assert.Error(t, store.Put(ctx, key, []byte("x")), key)
			}
		})
	}
}

func TestRateLimitedStore_HonoursContext(t *testing.T) {
	store := NewRateLimitedStore(NewMemoryStore(), 0.001, 1)

	// consume the single burst token
	require.NoError(t, store.Put(context.Background(), "k", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := store.Get(ctx, "k")
	assert.Error(t, err)
}

func TestNewRateLimitedStore_DisabledReturnsNext(t *testing.T) {
	mem := NewMemoryStore()
	assert.Same(t, mem, NewRateLimitedStore(mem, 0, 0))
}
