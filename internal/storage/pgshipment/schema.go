package pgshipment

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS shipments (
  owner TEXT NOT NULL,
  tracking_number TEXT NOT NULL,
  carrier_id TEXT NOT NULL,
  carrier_name TEXT NOT NULL DEFAULT '',
  state_id TEXT NULL,
  state_text TEXT NOT NULL DEFAULT '',
  last_event_time TEXT NOT NULL DEFAULT '',
  notified_out_for_delivery BOOLEAN NOT NULL DEFAULT FALSE,
  notified_delivered BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  PRIMARY KEY (owner, tracking_number)
)`,
		// Partial index: the worker only ever scans non-terminal shipments.
		`CREATE INDEX IF NOT EXISTS idx_shipments_not_delivered ON shipments(created_at)
  WHERE state_id IS NULL OR state_id <> 'delivered'`,
		`
CREATE TABLE IF NOT EXISTS owner_contacts (
  owner TEXT PRIMARY KEY,
  nickname TEXT NOT NULL DEFAULT '',
  phone_encrypted TEXT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
