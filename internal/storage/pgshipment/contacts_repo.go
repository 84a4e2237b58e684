package pgshipment

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

type StoredContact struct {
	Owner          string
	Nickname       string
	PhoneEncrypted string
}

// GetContact returns the encrypted contact of an owner. ok is false when the owner has
// no row or no phone stored.
func (s *Storage) GetContact(ctx context.Context, owner string) (StoredContact, bool, error) {
	var c StoredContact
	var phone *string
	err := s.db.QueryRow(ctx, `
SELECT owner, nickname, phone_encrypted
FROM owner_contacts
WHERE owner = $1
`, owner).Scan(&c.Owner, &c.Nickname, &phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredContact{}, false, nil
	}
	if err != nil {
		return StoredContact{}, false, errors.Wrap(err, "select contact")
	}
	if phone == nil || *phone == "" {
		return StoredContact{}, false, nil
	}
	c.PhoneEncrypted = *phone
	return c, true, nil
}

func (s *Storage) UpsertContact(ctx context.Context, c StoredContact) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO owner_contacts (owner, nickname, phone_encrypted, updated_at)
VALUES ($1, $2, NULLIF($3, ''), now())
ON CONFLICT (owner) DO UPDATE SET
  nickname = EXCLUDED.nickname,
  phone_encrypted = EXCLUDED.phone_encrypted,
  updated_at = now()
`, c.Owner, c.Nickname, c.PhoneEncrypted)
	return errors.Wrap(err, "upsert contact")
}
