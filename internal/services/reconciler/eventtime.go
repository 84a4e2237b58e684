package reconciler

import (
	"time"

	"github.com/BearBump/DeliveryWatch/internal/integrations/carrier"
	"github.com/BearBump/DeliveryWatch/internal/models"
)

// Carriers send ISO-8601 timestamps with or without a colon in the offset.
var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
}

// lastEventTime formats the time of the newest progress event in the display layout,
// keeping the carrier's offset. ok is false when there are no events or the time
// does not parse.
func lastEventTime(snap carrier.Snapshot) (formatted, raw string, ok bool) {
	ev, found := snap.LastEvent()
	if !found {
		return "", "", false
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, ev.Time); err == nil {
			return t.Format(models.LastEventTimeLayout), ev.Time, true
		}
	}
	return "", ev.Time, false
}
