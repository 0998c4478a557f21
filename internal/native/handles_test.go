package native

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleTable_PutGetRedeem(t *testing.T) {
	table := NewHandleTable()

	key := table.Put("state")
	require.NotZero(t, key)
	assert.Equal(t, 1, table.Len())

	v, ok := table.Get(key)
	require.True(t, ok)
	assert.Equal(t, "state", v)

	v, ok = table.Redeem(key)
	require.True(t, ok)
	assert.Equal(t, "state", v)
	assert.Equal(t, 0, table.Len())

	_, ok = table.Get(key)
	assert.False(t, ok)
}

func TestHandleTable_RedeemOnce(t *testing.T) {
	table := NewHandleTable()
	key := table.Put(42)

	_, first := table.Redeem(key)
	_, second := table.Redeem(key)

	assert.True(t, first)
	assert.False(t, second)
}

func TestHandleTable_ZeroKey(t *testing.T) {
	table := NewHandleTable()

	_, ok := table.Get(0)
	assert.False(t, ok)
	_, ok = table.Redeem(0)
	assert.False(t, ok)
}

func TestHandleTable_KeysNotReused(t *testing.T) {
	table := NewHandleTable()
	a := table.Put("a")
	table.Redeem(a)
	b := table.Put("b")

	assert.NotEqual(t, a, b)
}

func TestHandleTable_ConcurrentRedeem(t *testing.T) {
	table := NewHandleTable()
	key := table.Put("contended")

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, ok := table.Redeem(key); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}
