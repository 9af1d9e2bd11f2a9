package service

// Routing keys on the orders exchange.
const (
	EventOrderCreated    = "order.created"
	EventOrderPaid       = "order.paid"
	EventOrderFailed     = "order.failed"
	EventOrderExpired    = "order.expired"
	EventOrderConflicted = "order.conflicted"
)

// SlotRef is the slice of a booking line the recheck worker and cache
// invalidation care about.
type SlotRef struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
}

// OrderEvent is the change notification published on every order transition.
// It is the realtime-listener analog: consumers re-derive availability from
// it instead of polling the store.
type OrderEvent struct {
	OwnerID string    `json:"owner_id"`
	OrderID string    `json:"order_id"`
	Status  string    `json:"status"`
	Slots   []SlotRef `json:"slots,omitempty"`
}
