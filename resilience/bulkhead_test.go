package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	var rejected []string
	b := NewBulkhead(BulkheadConfig{Name: "redis", MaxConcurrent: 1, OnReject: func(n string) { rejected = append(rejected, n) }})

	hold := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(context.Background(), func() error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started

	if b.InUse() != 1 {
		t.Errorf("expected 1 slot in use, got %d", b.InUse())
	}
	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v", err)
	}
	if len(rejected) != 1 || rejected[0] != "redis" {
		t.Errorf("expected one rejection for redis, got %v", rejected)
	}

	close(hold)
	if err := <-done; err != nil {
		t.Fatalf("holder failed: %v", err)
	}
	if b.InUse() != 0 {
		t.Errorf("expected slot released, got %d", b.InUse())
	}
}

func TestBulkhead_WaitTimeout(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 10 * time.Millisecond})
	hold := make(chan struct{})
	started := make(chan struct{})
	go b.Execute(context.Background(), func() error {
		close(started)
		<-hold
		return nil
	})
	<-started
	defer close(hold)

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("expected ErrBulkheadTimeout, got %v", err)
	}
}

func TestBulkhead_WaitCancelled(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Hour})
	hold := make(chan struct{})
	started := make(chan struct{})
	go b.Execute(context.Background(), func() error {
		close(started)
		<-hold
		return nil
	})
	<-started
	defer close(hold)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := b.Execute(ctx, func() error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected ctx error, got %v", err)
	}
}

func TestBulkhead_BoundsConcurrency(t *testing.T) {
	const limit = 4
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: limit, MaxWait: time.Second})

	var mu sync.Mutex
	current, peak := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = ExecuteWithResult(context.Background(), b, func() (int, error) {
				mu.Lock()
				current++
				if current > peak {
					peak = current
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				current--
				mu.Unlock()
				return 0, nil
			})
		}()
	}
	wg.Wait()

	if peak > limit {
		t.Errorf("peak concurrency %d exceeded limit %d", peak, limit)
	}
}
