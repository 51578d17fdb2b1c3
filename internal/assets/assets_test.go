package assets

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLoadsOnce(t *testing.T) {
	var calls []string
	m := NewManager(func(part string) (int, error) {
		calls = append(calls, part)
		return len(part), nil
	})

	v, err := m.Load("3D/a.model")
	require.NoError(t, err)
	assert.Equal(t, len("/3D/a.model"), v)

	v, err = m.Load("/3D/a.model")
	require.NoError(t, err)
	assert.Equal(t, len("/3D/a.model"), v)

	assert.Equal(t, []string{"/3D/a.model"}, calls)
	hits, misses := m.Cache().Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestManagerIgnoresCase(t *testing.T) {
	var calls []string
	m := NewManager(func(part string) (string, error) {
		calls = append(calls, part)
		return part, nil
	})

	v, err := m.Load("/3D/Other.model")
	require.NoError(t, err)
	assert.Equal(t, "/3D/Other.model", v)

	v, err = m.Load("3d/OTHER.MODEL")
	require.NoError(t, err)
	assert.Equal(t, "/3D/Other.model", v)
	assert.Equal(t, []string{"/3D/Other.model"}, calls)
	assert.Equal(t, 1, m.Cache().Len())
}

func TestManagerDoesNotCacheFailures(t *testing.T) {
	fail := true
	m := NewManager(func(string) (string, error) {
		if fail {
			return "", errors.New("boom")
		}
		return "ok", nil
	})

	_, err := m.Load("/x")
	require.EqualError(t, err, "boom")
	assert.Equal(t, 0, m.Cache().Len())

	fail = false
	v, err := m.Load("/x")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestManagerPreload(t *testing.T) {
	m := NewManager(func(string) (int, error) {
		t.Fatal("load must not be called for preloaded parts")
		return 0, nil
	})
	m.Preload("3D/b.model", 7)

	v, err := m.Load("/3D/b.model")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	m.Close()
	assert.Equal(t, 0, m.Cache().Len())
}

func TestManagerConcurrentLoad(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	m := NewManager(func(string) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return 1, nil
	})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Load("/shared")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
}

func TestCacheClearResetsStats(t *testing.T) {
	c := NewCache[string]()
	c.Set("a", "x")
	_, ok := c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)

	c.Clear()
	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
	assert.Zero(t, c.Len())
}
