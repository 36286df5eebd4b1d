package guard

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquireExcludesSameKey(t *testing.T) {
	g := NewLocal()

	release, ok := g.TryAcquire("1")
	require.True(t, ok)
	assert.True(t, g.Held("1"))

	_, ok = g.TryAcquire("1")
	assert.False(t, ok, "second acquire of a held key must fail")

	other, ok := g.TryAcquire("2")
	require.True(t, ok, "different keys are independent")
	assert.Equal(t, []string{"1", "2"}, g.Keys())

	release()
	other()
	assert.False(t, g.Held("1"))
	assert.Empty(t, g.Keys())

	again, ok := g.TryAcquire("1")
	require.True(t, ok)
	again()
}

func TestReleaseIsIdempotent(t *testing.T) {
	g := NewLocal()

	release, ok := g.TryAcquire("k")
	require.True(t, ok)
	release()

	next, ok := g.TryAcquire("k")
	require.True(t, ok)

	// a stale release must not free the new holder's claim
	release()
	assert.True(t, g.Held("k"))
	next()
}

func TestConcurrentAcquireSingleWinner(t *testing.T) {
	g := NewLocal()

	var (
		wg      sync.WaitGroup
		winners int32
		start   = make(chan struct{})
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := g.TryAcquire("account"); ok {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, winners)
}
