package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, 10)

	require.NoError(t, s.Set(ctx, "a", []byte("hello")))
	val, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), val)
}

func TestMemoryStoreMiss(t *testing.T) {
	s := NewMemoryStore(time.Minute, 10)
	_, ok, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, 10)
	require.NoError(t, s.Set(ctx, "a", []byte("x")))
	require.NoError(t, s.Delete(ctx, "a"))
	_, ok, _ := s.Get(ctx, "a")
	assert.False(t, ok)
}

func TestMemoryStoreFlush(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, 10)
	require.NoError(t, s.Set(ctx, "a", []byte("x")))
	require.NoError(t, s.Set(ctx, "b", []byte("y")))
	require.NoError(t, s.Flush(ctx))
	_, ok, _ := s.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "b")
	assert.False(t, ok)
}

func TestMemoryStoreEvictsLRU(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, 2)
	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))
	require.NoError(t, s.Set(ctx, "c", []byte("3")))

	_, okA, _ := s.Get(ctx, "a")
	_, okC, _ := s.Get(ctx, "c")
	assert.False(t, okA)
	assert.True(t, okC)
}

func TestMemoryStoreTouchPreventsEviction(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, 2)
	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))

	_, _, _ = s.Get(ctx, "a") // touch a, making b the LRU victim
	require.NoError(t, s.Set(ctx, "c", []byte("3")))

	_, okA, _ := s.Get(ctx, "a")
	_, okB, _ := s.Get(ctx, "b")
	assert.True(t, okA)
	assert.False(t, okB)
}
