package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
)

// recordingService counts NotifyForOrder calls; every other operation is a
// no-op. failFor makes specific orders fail so worker resilience is testable.
type recordingService struct {
	mu      sync.Mutex
	orders  []string
	failFor map[string]bool
	done    chan struct{}
	want    int
}

func newRecordingService(want int) *recordingService {
	return &recordingService{failFor: make(map[string]bool), done: make(chan struct{}), want: want}
}

func (s *recordingService) NotifyForOrder(_ context.Context, in ports.NotifyInput) (*ports.NotifyResult, error) {
	s.mu.Lock()
	s.orders = append(s.orders, in.OrderID)
	if len(s.orders) == s.want {
		close(s.done)
	}
	fail := s.failFor[in.OrderID]
	s.mu.Unlock()
	if fail {
		return nil, errors.New("broadcast failed")
	}
	return &ports.NotifyResult{Round: &domain.DispatchRound{OrderID: in.OrderID}}, nil
}

func (s *recordingService) Claim(context.Context, ports.ClaimInput) (domain.ClaimResult, error) {
	return domain.ClaimLost, nil
}
func (s *recordingService) CancelRound(context.Context, string) error { return nil }
func (s *recordingService) ExpireRound(context.Context, string) error { return nil }
func (s *recordingService) ListAttempts(context.Context, string) ([]*domain.DeliveryAttempt, error) {
	return nil, nil
}
func (s *recordingService) BroadcastAllReady(context.Context, string) (ports.BulkBroadcastResult, error) {
	return ports.BulkBroadcastResult{}, nil
}
func (s *recordingService) BroadcastProcessing(context.Context, string) (ports.BulkBroadcastResult, error) {
	return ports.BulkBroadcastResult{}, nil
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not process all jobs in time")
	}
}

func TestDispatcher_ProcessesAllJobs(t *testing.T) {
	svc := newRecordingService(4)
	d := NewDispatcher(3, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for _, id := range []string{"order_1", "order_2", "order_3", "order_4"} {
		d.Enqueue(ports.NotifyInput{OrderID: id, Message: "ready"})
	}
	waitDone(t, svc.done)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	seen := make(map[string]bool)
	for _, id := range svc.orders {
		seen[id] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 distinct orders processed, got %v", svc.orders)
	}
}

func TestDispatcher_SameOrderSameShard(t *testing.T) {
	d := NewDispatcher(8, newRecordingService(0), zerolog.Nop())

	first := d.shardIndex("order_abc")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("order_abc"); got != first {
			t.Fatalf("shard index not deterministic: %d vs %d", got, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index out of range: %d", first)
	}
}

func TestDispatcher_JobFailureDoesNotStopWorker(t *testing.T) {
	svc := newRecordingService(3)
	svc.failFor["order_bad"] = true
	// Single worker: all three jobs land on the same goroutine.
	d := NewDispatcher(1, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.NotifyInput{OrderID: "order_bad"})
	d.Enqueue(ports.NotifyInput{OrderID: "order_after1"})
	d.Enqueue(ports.NotifyInput{OrderID: "order_after2"})
	waitDone(t, svc.done)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.orders) != 3 {
		t.Errorf("worker must survive a failing job, processed %v", svc.orders)
	}
}
