package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New[string](0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxEntries, c.Stats()["max_entries"])

	c, err = New[string](4)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCache_SetAndGet(t *testing.T) {
	c, err := New[string](8)
	require.NoError(t, err)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "simple_key_value", key: "test-key", value: "test-value"},
		{name: "panel_key", key: "2d_hist\x00equities", value: "panels"},
		{name: "empty_value", key: "empty-key", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Set(tt.key, tt.value)
			value, ok := c.Get(tt.key)
			assert.True(t, ok)
			assert.Equal(t, tt.value, value)
		})
	}

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New[int](2)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(1), c.Stats()["evictions"])
}

func TestCache_Stats(t *testing.T) {
	c, err := New[int](4)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("b")

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_entries"])
	assert.Equal(t, uint64(2), stats["hits"])
	assert.Equal(t, uint64(1), stats["misses"])
	assert.InDelta(t, 2.0/3.0, stats["hit_ratio"], 1e-12)
}

func TestCache_Concurrent(t *testing.T) {
	c, err := New[int](16)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", (g*100+i)%32)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
	stats := c.Stats()
	assert.Equal(t, uint64(800), stats["hits"].(uint64)+stats["misses"].(uint64))
}
