package handler

type notifyRequest struct {
	Message string `json:"message" validate:"required,min=3"`
	Urgent  bool   `json:"urgent"`
}

type broadcastSummary struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

type notifyResponse struct {
	RoundID   string           `json:"round_id"`
	OrderID   string           `json:"order_id"`
	Status    string           `json:"status"`
	Urgent    bool             `json:"urgent"`
	ExpiresAt string           `json:"expires_at"`
	Eligible  int              `json:"eligible_partners"`
	Broadcast broadcastSummary `json:"broadcast"`
}

type claimResponse struct {
	Result  string `json:"result"`
	RoundID string `json:"round_id"`
}

type bulkBroadcastResponse struct {
	StoreID  string `json:"store_id"`
	Enqueued int    `json:"enqueued"`
	Message  string `json:"message"`
}

type attemptResponse struct {
	PartnerID   string `json:"partner_id"`
	Channel     string `json:"channel"`
	TargetToken string `json:"target_token"`
	SentAt      string `json:"sent_at"`
	Delivered   bool   `json:"delivered"`
	Error       string `json:"error,omitempty"`
}
