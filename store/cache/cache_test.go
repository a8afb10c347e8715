package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = c.Get("missing")
	require.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()

	c.SetWithTTL("a", "x", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestCacheDelete(t *testing.T) {
	evicted := map[string]any{}
	c := New(Config{
		DefaultTTL:      time.Minute,
		CleanupInterval: time.Minute,
		OnEviction:      func(key string, value any) { evicted[key] = value },
	})
	defer c.Close()

	c.Set("a", 1)
	c.Delete("a")
	_, ok := c.Get("a")
	require.False(t, ok)
	require.Equal(t, 1, evicted["a"])
}

func TestCacheMaxItems(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute, MaxItems: 2})
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	count := 0
	for _, key := range []string{"a", "b", "c"} {
		if _, ok := c.Get(key); ok {
			count++
		}
	}
	require.Equal(t, 2, count)
}
