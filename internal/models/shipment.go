package models

import "time"

// Normalized carrier states. An empty StateID means the shipment has not been checked yet.
const (
	StateInformationReceived = "information_received"
	StateAtPickup            = "at_pickup"
	StateInTransit           = "in_transit"
	StateOutForDelivery      = "out_for_delivery"
	StateDelivered           = "delivered"
	StateException           = "exception"
	StateUnknown             = "unknown"
)

// LastEventTimeLayout is the display format stored in ShipmentRecord.LastEventTime.
const LastEventTimeLayout = "2006-01-02 15:04"

// IsTerminal reports whether a shipment in this state is no longer polled.
func IsTerminal(stateID string) bool {
	return stateID == StateDelivered
}

// NotifyState is the per-milestone notification state. It only ever moves NotSent -> Sent.
type NotifyState uint8

const (
	NotSent NotifyState = iota
	Sent
)

func (s NotifyState) String() string {
	if s == Sent {
		return "sent"
	}
	return "not_sent"
}

// NotifyStateOf maps the persisted boolean flag to a NotifyState.
func NotifyStateOf(sent bool) NotifyState {
	if sent {
		return Sent
	}
	return NotSent
}

type ShipmentRecord struct {
	Owner          string
	CarrierID      string
	TrackingNumber string
	CarrierName    string

	StateID       string
	StateText     string
	LastEventTime string

	NotifiedOutForDelivery NotifyState
	NotifiedDelivered      NotifyState

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShipmentKey is the natural key of a ShipmentRecord.
type ShipmentKey struct {
	Owner          string
	TrackingNumber string
}

func (r *ShipmentRecord) Key() ShipmentKey {
	return ShipmentKey{Owner: r.Owner, TrackingNumber: r.TrackingNumber}
}

// ShipmentPatch is a partial update. Nil fields are left untouched; notification
// flags can only be raised to Sent, never reset.
type ShipmentPatch struct {
	StateID       *string
	StateText     *string
	LastEventTime *string

	MarkOutForDeliveryNotified bool
	MarkDeliveredNotified      bool
}

func (p ShipmentPatch) Empty() bool {
	return p.StateID == nil && p.StateText == nil && p.LastEventTime == nil &&
		!p.MarkOutForDeliveryNotified && !p.MarkDeliveredNotified
}

type ShipmentCreateInput struct {
	Owner          string
	CarrierID      string
	CarrierName    string
	TrackingNumber string
}

// OwnerContact is a decrypted notification destination for a shipment owner.
type OwnerContact struct {
	Owner    string
	Nickname string
	Phone    string
}
