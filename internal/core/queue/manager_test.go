package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fridge-inventory/internal/pkg/common"
)

func TestSubmitRunsJobsSequentially(t *testing.T) {
	m := NewManager(10)
	m.Start()
	defer m.Close()

	var inFlight, maxInFlight int32
	job := func(ctx context.Context) (any, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			cur := atomic.LoadInt32(&maxInFlight)
			if n <= cur || atomic.CompareAndSwapInt32(&maxInFlight, cur, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return "ok", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Submit(context.Background(), "scan", job)
			if err != nil || v != "ok" {
				t.Errorf("Submit = %v, %v", v, err)
			}
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Fatalf("expected sequential execution, max in flight = %d", maxInFlight)
	}
	if got := m.GetQueueStatus().ProcessedCount; got != 5 {
		t.Fatalf("processed = %d, want 5", got)
	}
}

func TestEnqueueFull(t *testing.T) {
	m := NewManager(1)
	// 未啟動 worker，第二筆會因佇列滿而被拒
	noop := func(context.Context) (any, error) { return nil, nil }
	if _, err := m.Enqueue(context.Background(), "a", noop); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if _, err := m.Enqueue(context.Background(), "b", noop); !errors.Is(err, common.ErrTooManyRequests) {
		t.Fatalf("expected ErrTooManyRequests, got %v", err)
	}
	m.Start()
	m.Close()
}

func TestEnqueueAfterClose(t *testing.T) {
	m := NewManager(1)
	m.Start()
	m.Close()
	if _, err := m.Enqueue(context.Background(), "a", func(context.Context) (any, error) { return nil, nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestJobErrorPropagates(t *testing.T) {
	m := NewManager(1)
	m.Start()
	defer m.Close()

	boom := errors.New("boom")
	if _, err := m.Submit(context.Background(), "a", func(context.Context) (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
