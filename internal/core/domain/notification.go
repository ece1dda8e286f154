package domain

import (
	"errors"
	"time"
)

// ErrUnknownChannel is recorded on an attempt whose token references a
// channel kind no transport is registered for.
var ErrUnknownChannel = errors.New("no channel registered for token kind")

// PayloadKind tags the notification payload so channel implementations never
// have to guess at loosely-typed data shapes.
type PayloadKind string

const (
	PayloadOrder     PayloadKind = "order"
	PayloadDelivery  PayloadKind = "delivery"
	PayloadPromotion PayloadKind = "promotion"
	PayloadSystem    PayloadKind = "system"
)

// NotificationPayload is the channel-independent message shape. Data carries
// string key/values only, compatible with any push transport.
type NotificationPayload struct {
	Kind   PayloadKind       `json:"kind" bson:"kind"`
	Title  string            `json:"title" bson:"title"`
	Body   string            `json:"body" bson:"body"`
	Data   map[string]string `json:"data,omitempty" bson:"data,omitempty"`
	Urgent bool              `json:"urgent" bson:"urgent"`
}

// DeliveryAttempt records a single send through one channel to one partner.
// Append-only: written once per send, whatever the outcome, and answers
// "did this partner actually get notified".
type DeliveryAttempt struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	RoundID     string      `json:"round_id" bson:"round_id"`
	PartnerID   string      `json:"partner_id" bson:"partner_id"`
	Channel     ChannelKind `json:"channel" bson:"channel"`
	TargetToken string      `json:"target_token" bson:"target_token"`
	SentAt      time.Time   `json:"sent_at" bson:"sent_at"`
	Delivered   bool        `json:"delivered" bson:"delivered"`
	Error       string      `json:"error,omitempty" bson:"error,omitempty"`
}

// NotificationRecord is the persisted in-app notification row. It is the
// fallback of record: even when both push channels fail the user still sees
// the message on next visit.
type NotificationRecord struct {
	ID        string              `json:"id" bson:"_id,omitempty"`
	UserID    string              `json:"user_id" bson:"user_id"`
	Payload   NotificationPayload `json:"payload" bson:"payload"`
	Read      bool                `json:"read" bson:"read"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
}
