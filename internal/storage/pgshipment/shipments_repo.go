package pgshipment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BearBump/DeliveryWatch/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const shipmentColumns = `
  owner, tracking_number, carrier_id, carrier_name,
  state_id, state_text, last_event_time,
  notified_out_for_delivery, notified_delivered,
  created_at, updated_at`

func scanShipment(row pgx.Row) (*models.ShipmentRecord, error) {
	var r models.ShipmentRecord
	var stateID *string
	var notifiedOFD, notifiedDelivered bool
	if err := row.Scan(
		&r.Owner, &r.TrackingNumber, &r.CarrierID, &r.CarrierName,
		&stateID, &r.StateText, &r.LastEventTime,
		&notifiedOFD, &notifiedDelivered,
		&r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if stateID != nil {
		r.StateID = *stateID
	}
	r.NotifiedOutForDelivery = models.NotifyStateOf(notifiedOFD)
	r.NotifiedDelivered = models.NotifyStateOf(notifiedDelivered)
	return &r, nil
}

// CreateShipment starts tracking a shipment. Tracking the same (owner, tracking number)
// twice returns the existing record unchanged.
func (s *Storage) CreateShipment(ctx context.Context, in models.ShipmentCreateInput) (*models.ShipmentRecord, error) {
	if in.Owner == "" || in.TrackingNumber == "" || in.CarrierID == "" {
		return nil, errors.New("owner, trackingNumber and carrierId are required")
	}
	now := time.Now().UTC()

	_, err := s.db.Exec(ctx, `
INSERT INTO shipments (
  owner, tracking_number, carrier_id, carrier_name, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$5)
ON CONFLICT (owner, tracking_number) DO NOTHING
`, in.Owner, in.TrackingNumber, in.CarrierID, in.CarrierName, now)
	if err != nil {
		return nil, errors.Wrap(err, "insert shipment")
	}
	return s.GetShipment(ctx, in.Owner, in.TrackingNumber)
}

func (s *Storage) GetShipment(ctx context.Context, owner, trackingNumber string) (*models.ShipmentRecord, error) {
	row := s.db.QueryRow(ctx, `SELECT`+shipmentColumns+`
FROM shipments
WHERE owner = $1 AND tracking_number = $2
`, owner, trackingNumber)
	r, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select shipment")
	}
	return r, nil
}

// FindNotTerminal returns every shipment that has not reached the delivered state,
// including shipments that were never checked.
func (s *Storage) FindNotTerminal(ctx context.Context) ([]*models.ShipmentRecord, error) {
	rows, err := s.db.Query(ctx, `SELECT`+shipmentColumns+`
FROM shipments
WHERE state_id IS NULL OR state_id <> $1
ORDER BY created_at ASC
`, models.StateDelivered)
	if err != nil {
		return nil, errors.Wrap(err, "select not terminal shipments")
	}
	defer rows.Close()

	var out []*models.ShipmentRecord
	for rows.Next() {
		r, err := scanShipment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan shipment")
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

// PatchShipment applies the non-empty fields of p to one shipment in a single statement.
// Notification flags are only ever set to TRUE here.
func (s *Storage) PatchShipment(ctx context.Context, owner, trackingNumber string, p models.ShipmentPatch) error {
	if p.Empty() {
		return nil
	}

	args := []any{owner, trackingNumber}
	sets := []string{"updated_at = now()"}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.StateID != nil {
		set("state_id", *p.StateID)
	}
	if p.StateText != nil {
		set("state_text", *p.StateText)
	}
	if p.LastEventTime != nil {
		set("last_event_time", *p.LastEventTime)
	}
	if p.MarkOutForDeliveryNotified {
		sets = append(sets, "notified_out_for_delivery = TRUE")
	}
	if p.MarkDeliveredNotified {
		sets = append(sets, "notified_delivered = TRUE")
	}

	tag, err := s.db.Exec(ctx, `UPDATE shipments SET `+strings.Join(sets, ", ")+`
WHERE owner = $1 AND tracking_number = $2`, args...)
	if err != nil {
		return errors.Wrap(err, "patch shipment")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteShipment(ctx context.Context, owner, trackingNumber string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM shipments WHERE owner = $1 AND tracking_number = $2`, owner, trackingNumber)
	if err != nil {
		return errors.Wrap(err, "delete shipment")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
