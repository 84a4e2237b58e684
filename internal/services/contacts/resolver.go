package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BearBump/DeliveryWatch/internal/cache"
	"github.com/BearBump/DeliveryWatch/internal/models"
	"github.com/BearBump/DeliveryWatch/internal/storage/pgshipment"
	"github.com/pkg/errors"
)

// ErrContactUnavailable means the owner cannot be notified right now: no stored phone,
// or a phone that does not decrypt.
var ErrContactUnavailable = errors.New("contact unavailable")

type Repository interface {
	GetContact(ctx context.Context, owner string) (pgshipment.StoredContact, bool, error)
}

type Decrypter interface {
	Decrypt(encoded string) (string, error)
}

// Resolver looks up an owner's notification contact. Only the encrypted row is cached;
// decryption happens on every call.
type Resolver struct {
	repo  Repository
	dec   Decrypter
	cache cache.BytesCache
	ttl   time.Duration
}

func New(repo Repository, dec Decrypter, c cache.BytesCache, ttl time.Duration) *Resolver {
	return &Resolver{repo: repo, dec: dec, cache: c, ttl: ttl}
}

func (r *Resolver) Resolve(ctx context.Context, owner string) (models.OwnerContact, error) {
	if owner == "" {
		return models.OwnerContact{}, errors.Wrap(ErrContactUnavailable, "empty owner")
	}

	stored, ok, err := r.load(ctx, owner)
	if err != nil {
		return models.OwnerContact{}, err
	}
	if !ok {
		return models.OwnerContact{}, errors.Wrapf(ErrContactUnavailable, "owner %s has no phone", owner)
	}

	phone, err := r.dec.Decrypt(stored.PhoneEncrypted)
	if err != nil || phone == "" {
		return models.OwnerContact{}, errors.Wrapf(ErrContactUnavailable, "owner %s phone does not decrypt", owner)
	}

	nickname := stored.Nickname
	if nickname == "" {
		nickname = owner
	}
	return models.OwnerContact{Owner: owner, Nickname: nickname, Phone: phone}, nil
}

func (r *Resolver) load(ctx context.Context, owner string) (pgshipment.StoredContact, bool, error) {
	cacheOn := r.cache != nil && r.ttl > 0

	if cacheOn {
		b, ok, err := r.cache.Get(ctx, contactKey(owner))
		if err == nil && ok {
			var c pgshipment.StoredContact
			if json.Unmarshal(b, &c) == nil && c.PhoneEncrypted != "" {
				return c, true, nil
			}
		}
	}

	c, ok, err := r.repo.GetContact(ctx, owner)
	if err != nil {
		return pgshipment.StoredContact{}, false, errors.Wrap(err, "load contact")
	}
	if !ok {
		return pgshipment.StoredContact{}, false, nil
	}

	if cacheOn {
		// Best effort: a failed cache write only costs a DB read next time.
		b, _ := json.Marshal(c)
		_ = r.cache.Set(ctx, contactKey(owner), b, r.ttl)
	}
	return c, true, nil
}

func contactKey(owner string) string {
	return fmt.Sprintf("contact:%s:encrypted", owner)
}
