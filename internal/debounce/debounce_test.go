package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerCoalescesBurst(t *testing.T) {
	d := New(20 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 10; i++ {
		v := int32(i)
		d.Trigger("k", func() {
			calls.Add(1)
			last.Store(v)
		})
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, int32(10), last.Load())
}

func TestKeysAreIndependent(t *testing.T) {
	d := New(10 * time.Millisecond)
	var mu sync.Mutex
	seen := map[string]int{}
	for _, k := range []string{"a", "b", "a", "b", "c"} {
		key := k
		d.Trigger(key, func() {
			mu.Lock()
			seen[key]++
			mu.Unlock()
		})
	}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, seen)
}

func TestFlushRunsSynchronously(t *testing.T) {
	d := New(time.Hour)
	ran := false
	d.Trigger("k", func() { ran = true })
	require.True(t, d.Pending("k"))
	require.True(t, d.Flush("k"))
	require.True(t, ran)
	require.False(t, d.Pending("k"))
	require.False(t, d.Flush("k"))
}

func TestCancelDropsCall(t *testing.T) {
	d := New(5 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger("k", func() { calls.Add(1) })
	d.Cancel("k")
	time.Sleep(30 * time.Millisecond)
	require.Zero(t, calls.Load())
}

func TestFlushAll(t *testing.T) {
	d := New(time.Hour)
	var calls atomic.Int32
	d.Trigger("a", func() { calls.Add(1) })
	d.Trigger("b", func() { calls.Add(1) })
	d.FlushAll()
	require.Equal(t, int32(2), calls.Load())
	d.CancelAll()
}
