package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAttemptRepo struct {
	mu       sync.Mutex
	attempts []*domain.DeliveryAttempt
}

func (r *stubAttemptRepo) Insert(_ context.Context, attempt *domain.DeliveryAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *attempt
	r.attempts = append(r.attempts, &clone)
	return nil
}

func (r *stubAttemptRepo) ListByRound(_ context.Context, roundID string) ([]*domain.DeliveryAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.DeliveryAttempt
	for _, a := range r.attempts {
		if a.RoundID == roundID {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

// fakeChannel fails for tokens listed in errFor and can simulate a slow
// transport via delay. A delayed send honours context cancellation, like the
// real HTTP-backed channels do.
type fakeChannel struct {
	kind   domain.ChannelKind
	errFor map[string]error
	delay  time.Duration

	mu   sync.Mutex
	sent []string
}

func (c *fakeChannel) Kind() domain.ChannelKind { return c.kind }

func (c *fakeChannel) Send(ctx context.Context, target string, _ domain.NotificationPayload) error {
	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.delay):
		}
	}
	if err, ok := c.errFor[target]; ok {
		return err
	}
	c.mu.Lock()
	c.sent = append(c.sent, target)
	c.mu.Unlock()
	return nil
}

func testRound() *domain.DispatchRound {
	now := time.Now().UTC()
	return &domain.DispatchRound{
		ID:        "round_1",
		OrderID:   "order_1",
		StoreID:   "store_1",
		Message:   "Order ready for pickup",
		Urgent:    true,
		Status:    domain.RoundOpen,
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
}

func partnerWith(id string, tokens ...domain.DeviceToken) *domain.Partner {
	return &domain.Partner{ID: id, Name: "Partner " + id, Status: domain.PartnerApproved, Tokens: tokens}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestBroadcastService_PartnerFailuresAreIsolated(t *testing.T) {
	mobile := &fakeChannel{
		kind:   domain.ChannelMobilePush,
		errFor: map[string]error{"bad-token": errors.New("invalid registration token")},
	}
	web := &fakeChannel{kind: domain.ChannelWebPush}
	attempts := &stubAttemptRepo{}
	svc := NewBroadcastService([]ports.NotificationChannel{mobile, web}, attempts, time.Second, discardLogger)

	partners := []*domain.Partner{
		partnerWith("pA", domain.DeviceToken{Channel: domain.ChannelMobilePush, Token: "bad-token"}),
		partnerWith("pB", domain.DeviceToken{Channel: domain.ChannelWebPush, Token: "sub-b"}),
		partnerWith("pC"), // no tokens: skipped, not failed
	}

	result, notified := svc.Broadcast(context.Background(), testRound(), partners)

	if result.Attempted != 2 {
		t.Errorf("expected 2 attempted, got %d", result.Attempted)
	}
	if result.Delivered != 1 {
		t.Errorf("expected 1 delivered, got %d", result.Delivered)
	}
	if result.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", result.Failed)
	}
	if len(notified) != 2 {
		t.Fatalf("expected 2 notified partners, got %v", notified)
	}
	for _, id := range notified {
		if id == "pC" {
			t.Error("tokenless partner must not appear in notified list")
		}
	}

	rows, _ := attempts.ListByRound(context.Background(), "round_1")
	if len(rows) != 2 {
		t.Fatalf("expected 2 attempt rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.PartnerID == "pA" {
			if row.Delivered || row.Error == "" {
				t.Errorf("failed send must record delivered=false with an error, got %+v", row)
			}
		}
		if row.PartnerID == "pB" && !row.Delivered {
			t.Errorf("successful send must record delivered=true, got %+v", row)
		}
	}
}

func TestBroadcastService_SlowChannelIsBoundedByTimeout(t *testing.T) {
	slow := &fakeChannel{kind: domain.ChannelWebPush, delay: 5 * time.Second}
	attempts := &stubAttemptRepo{}
	svc := NewBroadcastService([]ports.NotificationChannel{slow}, attempts, 50*time.Millisecond, discardLogger)

	partners := []*domain.Partner{
		partnerWith("pSlow", domain.DeviceToken{Channel: domain.ChannelWebPush, Token: "sub-slow"}),
	}

	start := time.Now()
	result, _ := svc.Broadcast(context.Background(), testRound(), partners)
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Fatalf("broadcast took %v, must be bounded by the per-send timeout", elapsed)
	}
	if result.Failed != 1 {
		t.Errorf("timed-out send must count as failed, got %+v", result)
	}
}

func TestBroadcastService_MultiChannelPartnerDeliveredOnce(t *testing.T) {
	mobile := &fakeChannel{
		kind:   domain.ChannelMobilePush,
		errFor: map[string]error{"dead-device": errors.New("unregistered")},
	}
	web := &fakeChannel{kind: domain.ChannelWebPush}
	attempts := &stubAttemptRepo{}
	svc := NewBroadcastService([]ports.NotificationChannel{mobile, web}, attempts, time.Second, discardLogger)

	partners := []*domain.Partner{
		partnerWith("pA",
			domain.DeviceToken{Channel: domain.ChannelMobilePush, Token: "dead-device"},
			domain.DeviceToken{Channel: domain.ChannelWebPush, Token: "sub-a"},
		),
	}

	result, _ := svc.Broadcast(context.Background(), testRound(), partners)

	// One channel reached the partner, so the partner counts as delivered.
	if result.Attempted != 1 || result.Delivered != 1 || result.Failed != 0 {
		t.Errorf("partial channel failure must still count the partner as delivered, got %+v", result)
	}

	rows, _ := attempts.ListByRound(context.Background(), "round_1")
	if len(rows) != 2 {
		t.Errorf("every send must log an attempt, got %d rows", len(rows))
	}
}

func TestBroadcastService_UnknownChannelKind(t *testing.T) {
	attempts := &stubAttemptRepo{}
	svc := NewBroadcastService(nil, attempts, time.Second, discardLogger)

	partners := []*domain.Partner{
		partnerWith("pA", domain.DeviceToken{Channel: "carrier_pigeon", Token: "coo"}),
	}

	result, _ := svc.Broadcast(context.Background(), testRound(), partners)

	if result.Failed != 1 {
		t.Errorf("unroutable token must count as failed, got %+v", result)
	}
	rows, _ := attempts.ListByRound(context.Background(), "round_1")
	if len(rows) != 1 || rows[0].Error == "" {
		t.Fatalf("unroutable send must still log an attempt with an error, got %v", rows)
	}
}

func TestBroadcastService_SkipsUnapprovedPartners(t *testing.T) {
	web := &fakeChannel{kind: domain.ChannelWebPush}
	attempts := &stubAttemptRepo{}
	svc := NewBroadcastService([]ports.NotificationChannel{web}, attempts, time.Second, discardLogger)

	pending := partnerWith("pPending", domain.DeviceToken{Channel: domain.ChannelWebPush, Token: "sub-p"})
	pending.Status = domain.PartnerPending

	result, notified := svc.Broadcast(context.Background(), testRound(), []*domain.Partner{pending})

	if result.Attempted != 0 || len(notified) != 0 {
		t.Errorf("unapproved partner must be skipped entirely, got %+v %v", result, notified)
	}
	if len(web.sent) != 0 {
		t.Errorf("no sends expected, got %v", web.sent)
	}
}

func TestBroadcastService_UrgentTitle(t *testing.T) {
	round := testRound()
	round.Urgent = true
	payload := roundPayload(round)
	if payload.Title != "Urgent delivery opportunity" {
		t.Errorf("urgent round title %q", payload.Title)
	}
	if !payload.Urgent {
		t.Error("urgent flag must propagate into the payload")
	}

	round.Urgent = false
	payload = roundPayload(round)
	if payload.Title != "New delivery opportunity" {
		t.Errorf("normal round title %q", payload.Title)
	}
	if payload.Data["round_id"] != round.ID || payload.Data["order_id"] != round.OrderID {
		t.Errorf("payload data must carry round and order ids, got %v", payload.Data)
	}
}
