package live

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLanes_FIFOPerKey(t *testing.T) {
	l := newLanes()

	var mu sync.Mutex
	got := map[string][]int{}
	for i := 0; i < 100; i++ {
		for _, key := range []string{"a", "b"} {
			l.submit(key, func() {
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
			})
		}
	}
	l.wait()

	for _, key := range []string{"a", "b"} {
		assert.Len(t, got[key], 100)
		for i, v := range got[key] {
			assert.Equal(t, i, v)
		}
	}
	assert.Zero(t, l.active(), "idle lanes are retired")
}

func TestLanes_KeysRunInParallel(t *testing.T) {
	l := newLanes()

	release := make(chan struct{})
	l.submit("slow", func() { <-release })

	done := make(chan struct{})
	l.submit("fast", func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a blocked lane held up another key")
	}
	assert.Eventually(t, func() bool { return l.active() == 1 }, time.Second, 5*time.Millisecond)

	close(release)
	l.wait()
}
