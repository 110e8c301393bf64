package backup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScheduled_BacksUpUntilCancelled(t *testing.T) {
	m, _ := newManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunScheduled(ctx, 20*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		list, err := m.ListBackups()
		return err == nil && len(list) > 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("RunScheduled did not return after cancel")
	}

	list, err := m.ListBackups()
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}
