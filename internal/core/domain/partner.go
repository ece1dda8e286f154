package domain

// PartnerStatus is the moderation state of a delivery partner application.
type PartnerStatus string

const (
	PartnerPending  PartnerStatus = "pending"
	PartnerApproved PartnerStatus = "approved"
	PartnerRejected PartnerStatus = "rejected"
)

// ChannelKind identifies one notification transport.
type ChannelKind string

const (
	ChannelMobilePush ChannelKind = "mobile_push"
	ChannelWebPush    ChannelKind = "web_push"
	ChannelInApp      ChannelKind = "in_app"
)

// DeviceToken is one registered delivery target for a partner.
type DeviceToken struct {
	Channel ChannelKind `json:"channel" bson:"channel"`
	Token   string      `json:"token" bson:"token"`
}

// Partner is a delivery partner as seen by the dispatch subsystem.
type Partner struct {
	ID     string        `json:"id" bson:"_id,omitempty"`
	Name   string        `json:"name" bson:"name"`
	Status PartnerStatus `json:"status" bson:"status"`
	Tokens []DeviceToken `json:"tokens" bson:"tokens"`
}

// DispatchEligible reports whether the partner can receive a broadcast:
// approved and reachable through at least one registered token. The in-app
// channel always has an implicit target (the partner id itself), so a partner
// with any token entry qualifies.
func (p Partner) DispatchEligible() bool {
	return p.Status == PartnerApproved && len(p.Tokens) > 0
}
