package types

import "time"

// CustomerSnapshot freezes the buyer contact details at order time.
type CustomerSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Tracking carries shipment metadata set by the vendor.
type Tracking struct {
	Carrier        string          `json:"carrier,omitempty"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	History        []TrackingEvent `json:"history,omitempty"`
}

// TrackingEvent is one status change recorded against an order.
type TrackingEvent struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	ActorID   string    `json:"actorId,omitempty"`
	ActorRole string    `json:"actorRole,omitempty"`
	At        time.Time `json:"at"`
}
