package pipeline

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.IsNew("a"))
	assert.Zero(t, tr.Len())

	tr.MarkSeen("a")
	tr.MarkSeen("a")
	assert.False(t, tr.IsNew("a"))
	assert.True(t, tr.IsNew("b"))
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_Concurrent(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				id := fmt.Sprintf("%d-%d", i, j)
				tr.MarkSeen(id)
				_ = tr.IsNew(id)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, tr.Len())
}
