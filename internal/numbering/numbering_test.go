package numbering

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthority_Format(t *testing.T) {
	a, err := New(1)
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC) }

	ord := a.NextOrderNumber()
	inv := a.NextInvoiceNumber()
	assert.True(t, strings.HasPrefix(ord, "ORD-20261019-"), ord)
	assert.True(t, strings.HasPrefix(inv, "INV-20261019-"), inv)
}

func TestAuthority_UniqueUnderConcurrency(t *testing.T) {
	a, err := New(7)
	require.NoError(t, err)

	const workers, perWorker = 8, 500
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				n := a.NextOrderNumber()
				mu.Lock()
				seen[n] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestNew_InvalidNode(t *testing.T) {
	_, err := New(5000)
	assert.Error(t, err)
}
