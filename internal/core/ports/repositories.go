package ports

import (
	"context"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

// AttemptRepository stores per-send delivery attempt records. Rows are
// write-once; nothing here mutates an attempt after insertion.
type AttemptRepository interface {
	Insert(ctx context.Context, attempt *domain.DeliveryAttempt) error
	ListByRound(ctx context.Context, roundID string) ([]*domain.DeliveryAttempt, error)
}

// OrderRepository is the thin view onto the external order store. The
// storefront owns order CRUD; dispatch only reads orders and applies the
// post-claim assignment and status writes.
type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (*domain.Order, error)
	ListByStoreAndStatus(ctx context.Context, storeID string, status domain.OrderStatus) ([]*domain.Order, error)
	UpdateDeliveryAssignment(ctx context.Context, orderID, partnerID string) error
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

// PartnerDirectory resolves the delivery partner pool.
type PartnerDirectory interface {
	// ListApproved returns approved partners. storeID is accepted for future
	// per-store pools but broadcast mode intentionally notifies all approved
	// partners, not just the nearest, to avoid starving a round.
	ListApproved(ctx context.Context, storeID string) ([]*domain.Partner, error)
	FindByID(ctx context.Context, partnerID string) (*domain.Partner, error)
}

// ZoneRepository reads the externally administered delivery zone table.
type ZoneRepository interface {
	// ListActive returns active zones sorted ascending by min_distance_km.
	ListActive(ctx context.Context) ([]domain.DeliveryZone, error)
}

// StoreDirectory lists storefronts as discovery candidates for the nearby
// endpoint. The storefront service owns store CRUD.
type StoreDirectory interface {
	ListStoreCandidates(ctx context.Context) ([]Candidate, error)
}

// NotificationStore persists in-app notification records; used by the in-app
// channel and by customer follow-up notifications.
type NotificationStore interface {
	CreateRecord(ctx context.Context, record *domain.NotificationRecord) error
}
