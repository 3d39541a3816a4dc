package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestPollerRunsImmediatelyAndStops(t *testing.T) {
	var calls atomic.Int32
	first := make(chan struct{}, 1)
	p := New("test", time.Hour, func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			first <- struct{}{}
		}
		return nil
	}, nil)

	p.Start(context.Background())
	p.Start(context.Background())
	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected an immediate first poll")
	}
	if !p.Running() {
		t.Error("Expected poller to be running")
	}

	p.Stop()
	p.Stop()
	if p.Running() {
		t.Error("Expected poller to be stopped")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected exactly 1 poll with hour interval, got %d", got)
	}
}

func TestPollerTicks(t *testing.T) {
	logger, hook := test.NewNullLogger()
	var calls atomic.Int32
	boom := errors.New("boom")
	p := New("tick", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return boom
	}, logger)

	p.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()

	runs, err := p.Stats()
	if runs < 3 {
		t.Errorf("Expected at least 3 polls, got %d", runs)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Expected last error boom, got %v", err)
	}
	if len(hook.AllEntries()) == 0 {
		t.Error("Expected poll failures to be logged")
	}
}

func TestPollerExitsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	p := New("ctx", 10*time.Millisecond, func(ctx context.Context) error { return nil }, nil)
	p.Start(ctx)
	cancel()

	go func() {
		p.wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected loop to exit on context cancel")
	}
	p.Stop()
}
