package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/DeliveryWatch/internal/integrations/carrier"
	"github.com/BearBump/DeliveryWatch/internal/integrations/notify"
	"github.com/BearBump/DeliveryWatch/internal/models"
	"github.com/pkg/errors"
)

type ShipmentStore interface {
	FindNotTerminal(ctx context.Context) ([]*models.ShipmentRecord, error)
	PatchShipment(ctx context.Context, owner, trackingNumber string, p models.ShipmentPatch) error
}

type ContactResolver interface {
	Resolve(ctx context.Context, owner string) (models.OwnerContact, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// Reconciler polls the carrier for every shipment that is not delivered yet, stores state
// changes and notifies owners about milestones.
type Reconciler struct {
	store    ShipmentStore
	carrier  carrier.Client
	contacts ContactResolver
	sender   notify.Sender
	rl       RateLimiter

	pollInterval       time.Duration
	recordDelay        time.Duration
	carrierTimeout     time.Duration
	notifyTimeout      time.Duration
	rateLimitPerMinute int64

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	cycleMu   sync.Mutex
	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalCycles         atomic.Int64
	totalCandidates     atomic.Int64
	totalProcessed      atomic.Int64
	totalPatched        atomic.Int64
	totalNotified       atomic.Int64
	totalSendFailures   atomic.Int64
	totalRateLimited    atomic.Int64
	totalErrors         atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(store ShipmentStore, carrierClient carrier.Client, resolver ContactResolver, sender notify.Sender, rl RateLimiter) *Reconciler {
	return &Reconciler{
		store:             store,
		carrier:           carrierClient,
		contacts:          resolver,
		sender:            sender,
		rl:                rl,
		pollInterval:      2 * time.Minute,
		recordDelay:       500 * time.Millisecond,
		carrierTimeout:    10 * time.Second,
		notifyTimeout:     10 * time.Second,
		now:               time.Now,
		sleep:             sleepCtx,
		triggerCh:         make(chan struct{}, 1),
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

// WithSettings overrides the defaults; zero values keep them. recordDelay may be set to a
// negative value to disable the pause between records.
func (r *Reconciler) WithSettings(pollInterval, recordDelay, carrierTimeout, notifyTimeout time.Duration, rlPerMin int64) *Reconciler {
	if pollInterval > 0 {
		r.pollInterval = pollInterval
	}
	if recordDelay > 0 {
		r.recordDelay = recordDelay
	} else if recordDelay < 0 {
		r.recordDelay = 0
	}
	if carrierTimeout > 0 {
		r.carrierTimeout = carrierTimeout
	}
	if notifyTimeout > 0 {
		r.notifyTimeout = notifyTimeout
	}
	if rlPerMin > 0 {
		r.rateLimitPerMinute = rlPerMin
	}
	return r
}

// Trigger asks Run for an immediate cycle. Non-blocking; pending triggers coalesce.
func (r *Reconciler) Trigger() {
	r.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt         time.Time  `json:"startedAt"`
	LastCycleAt       *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt     *time.Time `json:"lastTriggerAt,omitempty"`
	TotalCycles       int64      `json:"totalCycles"`
	TotalCandidates   int64      `json:"totalCandidates"`
	TotalProcessed    int64      `json:"totalProcessed"`
	TotalPatched      int64      `json:"totalPatched"`
	TotalNotified     int64      `json:"totalNotified"`
	TotalSendFailures int64      `json:"totalSendFailures"`
	TotalRateLimited  int64      `json:"totalRateLimited"`
	TotalErrors       int64      `json:"totalErrors"`
	LastError         string     `json:"lastError,omitempty"`
}

func (r *Reconciler) Stats() Stats {
	st := Stats{
		StartedAt:         time.Unix(0, r.startedAtUnixNano).UTC(),
		TotalCycles:       r.totalCycles.Load(),
		TotalCandidates:   r.totalCandidates.Load(),
		TotalProcessed:    r.totalProcessed.Load(),
		TotalPatched:      r.totalPatched.Load(),
		TotalNotified:     r.totalNotified.Load(),
		TotalSendFailures: r.totalSendFailures.Load(),
		TotalRateLimited:  r.totalRateLimited.Load(),
		TotalErrors:       r.totalErrors.Load(),
	}
	if n := r.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := r.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	r.lastErrorMu.Lock()
	st.LastError = r.lastError
	r.lastErrorMu.Unlock()
	return st
}

// Run executes a cycle on every tick and on every Trigger until ctx is done.
// Ticks that fire while a cycle is running are dropped by the ticker.
func (r *Reconciler) Run(ctx context.Context) error {
	t := time.NewTicker(r.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.RunCycle(ctx)
		case <-r.triggerCh:
			r.RunCycle(ctx)
		}
	}
}

// CycleReport summarizes one RunCycle call.
type CycleReport struct {
	Candidates int
	Processed  int
	Patched    int
	Notified   int
	Errors     int
	Aborted    bool
}

// RunCycle reconciles every non-terminal shipment once, one at a time. Per-record
// failures are logged and counted; they never stop the batch. Calls are serialized.
func (r *Reconciler) RunCycle(ctx context.Context) CycleReport {
	r.cycleMu.Lock()
	defer r.cycleMu.Unlock()

	var rep CycleReport
	r.totalCycles.Add(1)
	r.lastCycleUnixNano.Store(r.now().UTC().UnixNano())

	items, err := r.store.FindNotTerminal(ctx)
	if err != nil {
		slog.Error("find not terminal shipments", "error", err.Error())
		r.recordError(err)
		rep.Errors++
		return rep
	}
	rep.Candidates = len(items)
	r.totalCandidates.Add(int64(len(items)))
	if len(items) == 0 {
		slog.Debug("no shipments to reconcile")
		return rep
	}

	for i, rec := range items {
		if i > 0 && r.recordDelay > 0 {
			if err := r.sleep(ctx, r.recordDelay); err != nil {
				rep.Aborted = true
				break
			}
		}
		if ctx.Err() != nil {
			rep.Aborted = true
			break
		}

		res, err := r.processOne(ctx, rec)
		if err != nil && ctx.Err() != nil {
			// Cancelled mid-record: nothing was written for it.
			rep.Aborted = true
			break
		}
		rep.Processed++
		r.totalProcessed.Add(1)
		if err != nil {
			rep.Errors++
			r.recordError(err)
			slog.Error("reconcile shipment",
				"owner", rec.Owner,
				"tracking_number", rec.TrackingNumber,
				"carrier_id", rec.CarrierID,
				"error", err.Error(),
			)
		}
		if res.patched {
			rep.Patched++
		}
		if res.outcome == OutcomeSent {
			rep.Notified++
		}
	}

	if rep.Aborted {
		slog.Info("reconcile cycle interrupted", "processed", rep.Processed, "candidates", rep.Candidates)
	} else {
		slog.Info("reconcile cycle done",
			"candidates", rep.Candidates,
			"patched", rep.Patched,
			"notified", rep.Notified,
			"errors", rep.Errors,
		)
	}
	return rep
}

type recordResult struct {
	outcome Outcome
	patched bool
}

func (r *Reconciler) processOne(ctx context.Context, rec *models.ShipmentRecord) (recordResult, error) {
	var res recordResult

	allowed, err := r.allow(ctx, rec.CarrierID)
	if err != nil {
		return res, err
	}
	if !allowed {
		// Лимит запросов к перевозчику на эту минуту исчерпан: запись подождёт следующего цикла.
		r.totalRateLimited.Add(1)
		slog.Warn("carrier rate limit exceeded, skipping until next cycle",
			"carrier_id", rec.CarrierID, "tracking_number", rec.TrackingNumber)
		return res, nil
	}

	tctx, cancel := context.WithTimeout(ctx, r.carrierTimeout)
	snap, err := r.carrier.Track(tctx, rec.CarrierID, rec.TrackingNumber)
	cancel()
	if err != nil {
		return res, errors.Wrap(err, "track")
	}
	if snap.StateID == "" {
		return res, errors.New("carrier returned no state")
	}

	newTime, rawTime, timeOK := lastEventTime(snap)
	if !timeOK && rawTime != "" {
		slog.Warn("unparseable carrier event time",
			"owner", rec.Owner, "tracking_number", rec.TrackingNumber, "time", rawTime)
	}

	stateChanged := snap.StateID != rec.StateID
	timeChanged := timeOK && newTime != rec.LastEventTime

	// Milestones are only considered on a state change. A failed send withholds the
	// state below, so the next cycle sees the change again and retries.
	var m Milestone
	outcome := OutcomeNotWarranted
	if stateChanged {
		m, outcome = r.decide(ctx, rec, snap)
	}
	res.outcome = outcome
	switch outcome {
	case OutcomeSent:
		r.totalNotified.Add(1)
	case OutcomeSendFailed:
		r.totalSendFailures.Add(1)
	}

	stateAdvance := stateChanged && outcome != OutcomeSendFailed

	var patch models.ShipmentPatch
	if stateAdvance {
		patch.StateID = &snap.StateID
		patch.StateText = &snap.StateText
	}
	if timeChanged {
		patch.LastEventTime = &newTime
	}
	if outcome == OutcomeSent {
		m.mark(&patch)
	}
	if patch.Empty() {
		return res, nil
	}

	if err := r.store.PatchShipment(ctx, rec.Owner, rec.TrackingNumber, patch); err != nil {
		return res, errors.Wrap(err, "patch shipment")
	}
	res.patched = true
	r.totalPatched.Add(1)
	if stateAdvance {
		slog.Info("shipment state changed",
			"owner", rec.Owner,
			"tracking_number", rec.TrackingNumber,
			"from", rec.StateID,
			"to", snap.StateID,
		)
	}
	return res, nil
}

func (r *Reconciler) allow(ctx context.Context, carrierID string) (bool, error) {
	if r.rl == nil || r.rateLimitPerMinute <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("rl:carrier:%s:%s", carrierID, r.now().UTC().Format("200601021504"))
	allowed, _, err := r.rl.Allow(ctx, key, r.rateLimitPerMinute, 70*time.Second)
	if err != nil {
		return false, errors.Wrap(err, "rate limit")
	}
	return allowed, nil
}

func (r *Reconciler) recordError(err error) {
	r.totalErrors.Add(1)
	r.lastErrorMu.Lock()
	r.lastError = err.Error()
	r.lastErrorMu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
