package carrier

import (
	"context"
)

type ProgressEvent struct {
	// Time is the provider's raw timestamp, ISO 8601 with offset.
	Time        string
	StatusID    string
	StatusText  string
	Location    string
	Description string
}

// Snapshot is the normalized provider view of one shipment. Events are ordered oldest first.
type Snapshot struct {
	StateID     string
	StateText   string
	CarrierName string
	Events      []ProgressEvent
}

// LastEvent returns the newest progress event, if any.
func (s Snapshot) LastEvent() (ProgressEvent, bool) {
	if len(s.Events) == 0 {
		return ProgressEvent{}, false
	}
	return s.Events[len(s.Events)-1], true
}

type Client interface {
	Track(ctx context.Context, carrierID, trackingNumber string) (Snapshot, error)
}
