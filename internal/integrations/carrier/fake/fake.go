package fake

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/BearBump/DeliveryWatch/internal/integrations/carrier"
	"github.com/BearBump/DeliveryWatch/internal/models"
)

var stages = []carrier.ProgressEvent{
	{StatusID: models.StateAtPickup, StatusText: "집화처리"},
	{StatusID: models.StateInTransit, StatusText: "간선상차"},
	{StatusID: models.StateOutForDelivery, StatusText: "배송출발"},
	{StatusID: models.StateDelivered, StatusText: "배송완료"},
}

// FakeClient is a local stand-in for the carrier provider. Every Track call on the same
// (carrier, tracking number) advances the shipment by one stage until it is delivered;
// the starting stage is derived from a hash of the key.
type FakeClient struct {
	mu    sync.Mutex
	calls map[string]int
	now   func() time.Time
}

func New() *FakeClient {
	return &FakeClient{
		calls: make(map[string]int),
		now:   time.Now,
	}
}

func (f *FakeClient) Track(ctx context.Context, carrierID, trackingNumber string) (carrier.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return carrier.Snapshot{}, err
	}

	key := carrierID + "|" + trackingNumber

	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	start := int(h.Sum32() % 2)

	f.mu.Lock()
	n := f.calls[key]
	f.calls[key] = n + 1
	f.mu.Unlock()

	stage := start + n
	if stage >= len(stages) {
		stage = len(stages) - 1
	}

	now := f.now()
	events := make([]carrier.ProgressEvent, 0, stage+1)
	for i := 0; i <= stage; i++ {
		ev := stages[i]
		ev.Time = now.Add(-time.Duration(stage-i) * time.Hour).Format(time.RFC3339)
		ev.Location = "fake hub"
		ev.Description = "fake carrier update"
		events = append(events, ev)
	}

	return carrier.Snapshot{
		StateID:     stages[stage].StatusID,
		StateText:   stages[stage].StatusText,
		CarrierName: "Fake Carrier",
		Events:      events,
	}, nil
}
