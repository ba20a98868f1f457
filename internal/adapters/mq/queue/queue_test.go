package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nicolelin19/mealmax/internal/domain/battle"
)

func outcome(winner int64) battle.Outcome {
	return battle.Outcome{WinnerID: winner, LoserID: winner + 1, WinnerScore: 10, LoserScore: 5}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, outcome(1)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.WinnerID != 1 {
		t.Errorf("expected winner 1, got %d", got.WinnerID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, outcome(1)) || !q.Enqueue(ctx, outcome(2)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, outcome(3)) {
		t.Error("expected enqueue to fail when queue is full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	const producers, perProducer = 8, 25
	q := NewInMemoryQueue(WithCapacity(producers * perProducer))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if !q.Enqueue(ctx, outcome(int64(p*perProducer+i))) {
					t.Errorf("enqueue %d/%d failed", p, i)
				}
			}
		}(p)
	}
	wg.Wait()
	_ = q.Close()

	seen := make(map[int64]bool)
	for e := range q.Dequeue(ctx) {
		seen[e.WinnerID] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("expected %d distinct outcomes, got %d", producers*perProducer, len(seen))
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if !q.Enqueue(ctx, outcome(1)) {
		t.Fatal("expected enqueue to succeed")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, outcome(2)) {
		t.Error("expected enqueue after close to fail")
	}

	ch := q.Dequeue(ctx)
	select {
	case e, ok := <-ch:
		if !ok || e.WinnerID != 1 {
			t.Errorf("expected buffered outcome to drain, got %+v ok=%v", e, ok)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out draining queue")
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to close after drain")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
