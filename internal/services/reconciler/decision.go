package reconciler

import (
	"context"
	"log/slog"

	"github.com/BearBump/DeliveryWatch/internal/integrations/carrier"
	"github.com/BearBump/DeliveryWatch/internal/integrations/notify"
	"github.com/BearBump/DeliveryWatch/internal/models"
	"github.com/BearBump/DeliveryWatch/internal/services/contacts"
	"github.com/pkg/errors"
)

type Outcome uint8

const (
	OutcomeNotWarranted Outcome = iota
	OutcomeSent
	OutcomeSendFailed
	OutcomeContactUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeSendFailed:
		return "send_failed"
	case OutcomeContactUnavailable:
		return "contact_unavailable"
	default:
		return "not_warranted"
	}
}

// decide notifies the owner when the newly observed state is a milestone that has not
// been announced yet. Callers invoke it only when the state differs from the stored one.
func (r *Reconciler) decide(ctx context.Context, rec *models.ShipmentRecord, snap carrier.Snapshot) (Milestone, Outcome) {
	m, ok := milestoneFor(snap.StateID)
	if !ok || m.Flag(rec) == models.Sent {
		return m, OutcomeNotWarranted
	}

	log := slog.With("owner", rec.Owner, "tracking_number", rec.TrackingNumber, "milestone", m.Name)

	contact, err := r.contacts.Resolve(ctx, rec.Owner)
	if err != nil {
		if errors.Is(err, contacts.ErrContactUnavailable) {
			log.Warn("owner contact unavailable, skipping notification", "error", err.Error())
			return m, OutcomeContactUnavailable
		}
		// Lookup failures are retried like a failed send.
		log.Error("resolve owner contact", "error", err.Error())
		return m, OutcomeSendFailed
	}

	carrierName := rec.CarrierName
	if carrierName == "" {
		carrierName = snap.CarrierName
	}
	if carrierName == "" {
		carrierName = rec.CarrierID
	}

	sctx, cancel := context.WithTimeout(ctx, r.notifyTimeout)
	defer cancel()
	err = r.sender.Send(sctx, notify.Message{
		Contact:        contact.Phone,
		Body:           m.Render(contact.Nickname, carrierName, rec.TrackingNumber),
		Owner:          rec.Owner,
		TrackingNumber: rec.TrackingNumber,
		Milestone:      m.Name,
	})
	if err != nil {
		log.Error("send notification", "error", err.Error())
		return m, OutcomeSendFailed
	}
	log.Info("notification sent")
	return m, OutcomeSent
}
