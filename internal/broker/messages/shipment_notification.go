package messages

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentNotification is a milestone message queued for delivery by notify-relay.
// ID is the de-duplication key on the consumer side.
type ShipmentNotification struct {
	ID             uuid.UUID `json:"id"`
	Owner          string    `json:"owner"`
	TrackingNumber string    `json:"tracking_number"`
	Milestone      string    `json:"milestone"`
	Contact        string    `json:"contact"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewShipmentNotification(owner, trackingNumber, milestone, contact, body string, now time.Time) ShipmentNotification {
	return ShipmentNotification{
		ID:             uuid.New(),
		Owner:          owner,
		TrackingNumber: trackingNumber,
		Milestone:      milestone,
		Contact:        contact,
		Body:           body,
		CreatedAt:      now.UTC(),
	}
}
