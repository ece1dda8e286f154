package domain

import (
	"errors"
	"time"
)

// ErrOrderNotDispatchable rejects opening a round for an order whose status
// is past the dispatch window.
var ErrOrderNotDispatchable = errors.New("order is not in a dispatchable status")

// OrderStatus is the slice of the order lifecycle the dispatch subsystem
// cares about. The full order model lives in the storefront service; only
// dispatch-relevant fields are read here.
type OrderStatus string

const (
	OrderProcessing     OrderStatus = "processing"
	OrderReadyForPickup OrderStatus = "ready_for_pickup"
	OrderAssigned       OrderStatus = "assigned"
	OrderInDelivery     OrderStatus = "in_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// Order is the dispatch subsystem's read model of a storefront order.
type Order struct {
	ID                string      `json:"id" bson:"_id"`
	StoreID           string      `json:"store_id" bson:"store_id"`
	CustomerID        string      `json:"customer_id" bson:"customer_id"`
	Status            OrderStatus `json:"status" bson:"status"`
	StoreLocation     Coordinate  `json:"store_location" bson:"store_location"`
	DeliveryLocation  Coordinate  `json:"delivery_location" bson:"delivery_location"`
	AssignedPartnerID string      `json:"assigned_partner_id,omitempty" bson:"assigned_partner_id,omitempty"`
	CreatedAt         time.Time   `json:"created_at" bson:"created_at"`
}

// DispatchEligible reports whether a round may be opened for the order.
func (o *Order) DispatchEligible() bool {
	return o.Status == OrderProcessing || o.Status == OrderReadyForPickup
}
