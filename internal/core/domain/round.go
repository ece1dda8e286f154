package domain

import (
	"errors"
	"time"
)

// RoundStatus represents the lifecycle state of a dispatch round.
type RoundStatus string

const (
	RoundOpen      RoundStatus = "open"
	RoundClaimed   RoundStatus = "claimed"
	RoundExpired   RoundStatus = "expired"
	RoundCancelled RoundStatus = "cancelled"
)

// validRoundTransitions defines the allowed state machine transitions.
// Claimed, expired and cancelled are terminal.
var validRoundTransitions = map[RoundStatus][]RoundStatus{
	RoundOpen: {RoundClaimed, RoundExpired, RoundCancelled},
}

var ErrRoundNotFound = errors.New("dispatch round not found")
var ErrOrderNotFound = errors.New("order not found")
var ErrPartnerNotFound = errors.New("delivery partner not found")
var ErrZoneNotFound = errors.New("delivery zone not found")
var ErrForbidden = errors.New("access forbidden")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s RoundStatus) CanTransitionTo(next RoundStatus) bool {
	for _, allowed := range validRoundTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s RoundStatus) Terminal() bool {
	return len(validRoundTransitions[s]) == 0
}

// ClaimResult is the outcome of a partner's attempt to accept a round.
type ClaimResult string

const (
	// ClaimWon: this partner's conditional update transitioned the round
	// open -> claimed. Exactly one concurrent caller ever sees this.
	ClaimWon ClaimResult = "won"
	// ClaimLost: the round was claimed by a different partner.
	ClaimLost ClaimResult = "already_claimed"
	// ClaimRoundNotOpen: the round already expired or was cancelled.
	ClaimRoundNotOpen ClaimResult = "round_not_open"
)

// DispatchRound represents one broadcast of one order to the partner pool.
type DispatchRound struct {
	ID               string      `json:"id" bson:"_id"`
	OrderID          string      `json:"order_id" bson:"order_id"`
	StoreID          string      `json:"store_id" bson:"store_id"`
	Message          string      `json:"message" bson:"message"`
	Urgent           bool        `json:"urgent" bson:"urgent"`
	Status           RoundStatus `json:"status" bson:"status"`
	WinningPartnerID string      `json:"winning_partner_id,omitempty" bson:"winning_partner_id,omitempty"`
	// NotifiedPartners records who the round was broadcast to, so the losing
	// side can be told when somebody wins.
	NotifiedPartners []string  `json:"notified_partners,omitempty" bson:"notified_partners,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt        time.Time `json:"expires_at" bson:"expires_at"`
}

// Open reports whether the round still accepts claims.
func (r *DispatchRound) Open() bool {
	return r.Status == RoundOpen
}
