package kb

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer(t *testing.T) {
	t.Run("Coalesces Bursts", func(t *testing.T) {
		d := newDebouncer(30 * time.Millisecond)
		var calls atomic.Int32

		for i := 0; i < 5; i++ {
			d.trigger(func() { calls.Add(1) })
			time.Sleep(5 * time.Millisecond)
		}

		assert.Eventually(t, func() bool {
			return calls.Load() == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Stop Cancels Pending", func(t *testing.T) {
		d := newDebouncer(50 * time.Millisecond)
		var calls atomic.Int32

		d.trigger(func() { calls.Add(1) })
		d.stopAndWait(time.Second)

		time.Sleep(80 * time.Millisecond)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("Trigger After Stop Is Ignored", func(t *testing.T) {
		d := newDebouncer(time.Millisecond)
		d.stopAndWait(time.Second)

		var calls atomic.Int32
		d.trigger(func() { calls.Add(1) })

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, int32(0), calls.Load())
	})
}
