package notify

import "context"

// Message is one outbound notification. Contact and Body are what gets delivered; the
// remaining fields identify the shipment for logs and queue consumers.
type Message struct {
	Contact string
	Body    string

	Owner          string
	TrackingNumber string
	Milestone      string
}

// Sender delivers a message. A nil error means the message was accepted.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
