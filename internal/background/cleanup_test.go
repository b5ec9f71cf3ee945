package background

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingPurger struct {
	calls atomic.Int64
	rows  int64
}

func (p *countingPurger) PurgeExpired(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	return p.rows, nil
}

func TestCleanupManager_RunsImmediatelyAndOnTick(t *testing.T) {
	purger := &countingPurger{rows: 2}
	cm := NewCleanupManager(purger, slog.Default(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return purger.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cm.Stop()
	<-done
}

func TestCleanupManager_StopsOnContextCancel(t *testing.T) {
	purger := &countingPurger{}
	cm := NewCleanupManager(purger, slog.Default(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop after context cancel")
	}

	assert.Equal(t, int64(1), purger.calls.Load())
}
