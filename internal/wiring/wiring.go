// Package wiring builds the reconciler and its collaborators from config. It is shared
// by the worker and the operator CLI.
package wiring

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/BearBump/DeliveryWatch/config"
	"github.com/BearBump/DeliveryWatch/internal/broker/kafka"
	"github.com/BearBump/DeliveryWatch/internal/cache"
	"github.com/BearBump/DeliveryWatch/internal/cache/rediscache"
	"github.com/BearBump/DeliveryWatch/internal/crypto/aescbc"
	"github.com/BearBump/DeliveryWatch/internal/integrations/carrier"
	"github.com/BearBump/DeliveryWatch/internal/integrations/carrier/fake"
	"github.com/BearBump/DeliveryWatch/internal/integrations/carrier/track24http"
	"github.com/BearBump/DeliveryWatch/internal/integrations/carrier/trackerdelivery"
	"github.com/BearBump/DeliveryWatch/internal/integrations/notify"
	"github.com/BearBump/DeliveryWatch/internal/integrations/notify/queued"
	"github.com/BearBump/DeliveryWatch/internal/integrations/notify/smsgateway"
	"github.com/BearBump/DeliveryWatch/internal/services/contacts"
	"github.com/BearBump/DeliveryWatch/internal/services/reconciler"
	"github.com/BearBump/DeliveryWatch/internal/storage/pgshipment"
	"github.com/pkg/errors"
)

// Storage is what the reconciler needs from Postgres.
type Storage interface {
	reconciler.ShipmentStore
	contacts.Repository
}

type Factories struct {
	NewStorage       func(cfg *config.Config) (st Storage, closeFn func(), err error)
	NewCarrierClient func(cfg *config.Config) (carrier.Client, error)
	NewSender        func(cfg *config.Config) (s notify.Sender, closeFn func(), err error)
	NewRateLimiter   func(cfg *config.Config) (rl reconciler.RateLimiter, closeFn func())
	NewContactCache  func(cfg *config.Config) (c cache.BytesCache, closeFn func())
}

func DefaultFactories() Factories {
	return Factories{
		NewStorage: func(cfg *config.Config) (Storage, func(), error) {
			st, err := OpenPostgresWithRetry(cfg.Database.ConnString(), 60*time.Second)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		NewCarrierClient: func(cfg *config.Config) (carrier.Client, error) {
			timeout := time.Duration(cfg.DeliveryWatch.CarrierTimeoutSeconds) * time.Second
			switch cfg.Carrier.Mode {
			case "", "trackerdelivery":
				return trackerdelivery.New(cfg.Carrier.BaseURL, timeout), nil
			case "track24":
				return track24http.New(cfg.Carrier.BaseURL, cfg.Carrier.APIKey, cfg.Carrier.Domain, timeout), nil
			case "fake":
				return fake.New(), nil
			default:
				return nil, fmt.Errorf("unknown carrier mode %q", cfg.Carrier.Mode)
			}
		},
		NewSender: func(cfg *config.Config) (notify.Sender, func(), error) {
			switch cfg.Notify.Mode {
			case "", "sms":
				timeout := time.Duration(cfg.DeliveryWatch.NotifyTimeoutSeconds) * time.Second
				return smsgateway.New(cfg.Notify.BaseURL, cfg.Notify.APIKey, cfg.Notify.APISecret, cfg.Notify.From, timeout), nil, nil
			case "kafka":
				brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
				producer := kafka.NewProducer(brokers)
				return queued.New(producer, NotificationsTopic(cfg)), func() { _ = producer.Close() }, nil
			default:
				return nil, nil, fmt.Errorf("unknown notify mode %q", cfg.Notify.Mode)
			}
		},
		NewRateLimiter: func(cfg *config.Config) (reconciler.RateLimiter, func()) {
			if cfg.DeliveryWatch.WorkerRateLimitPerMinute <= 0 {
				return nil, nil
			}
			rl := rediscache.NewRateLimiter(cfg.Redis.Addr())
			return rl, func() { _ = rl.Close() }
		},
		NewContactCache: func(cfg *config.Config) (cache.BytesCache, func()) {
			rc := rediscache.New(cfg.Redis.Addr())
			return rc, func() { _ = rc.Close() }
		},
	}
}

func NotificationsTopic(cfg *config.Config) string {
	if cfg.Kafka.NotificationsTopicName == "" {
		return "shipment.notifications"
	}
	return cfg.Kafka.NotificationsTopicName
}

func OpenPostgresWithRetry(connString string, wait time.Duration) (*pgshipment.Storage, error) {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgshipment.New(connString)
		if err == nil {
			return st, nil
		}
		lastErr = err
		slog.Warn("postgres is not ready yet", "error", err.Error())
		time.Sleep(1 * time.Second)
	}
	return nil, errors.Wrapf(lastErr, "postgres is not ready after %s", wait)
}

type Settings struct {
	PollInterval       time.Duration
	RecordDelay        time.Duration
	CarrierTimeout     time.Duration
	NotifyTimeout      time.Duration
	RateLimitPerMinute int64
	ContactTTL         time.Duration
	HTTPAddr           string
}

func SettingsFromConfig(cfg *config.Config) Settings {
	s := Settings{
		PollInterval:       time.Duration(cfg.DeliveryWatch.WorkerPollIntervalSeconds) * time.Second,
		RecordDelay:        time.Duration(cfg.DeliveryWatch.WorkerRecordDelayMillis) * time.Millisecond,
		CarrierTimeout:     time.Duration(cfg.DeliveryWatch.CarrierTimeoutSeconds) * time.Second,
		NotifyTimeout:      time.Duration(cfg.DeliveryWatch.NotifyTimeoutSeconds) * time.Second,
		RateLimitPerMinute: int64(cfg.DeliveryWatch.WorkerRateLimitPerMinute),
		ContactTTL:         time.Duration(cfg.DeliveryWatch.ContactCacheTTLSeconds) * time.Second,
		HTTPAddr:           cfg.DeliveryWatch.WorkerHTTPAddr,
	}
	if s.PollInterval <= 0 {
		s.PollInterval = 2 * time.Minute
	}
	if s.RecordDelay <= 0 {
		s.RecordDelay = 500 * time.Millisecond
	}
	if s.CarrierTimeout <= 0 {
		s.CarrierTimeout = 10 * time.Second
	}
	if s.NotifyTimeout <= 0 {
		s.NotifyTimeout = 10 * time.Second
	}
	if s.ContactTTL <= 0 {
		s.ContactTTL = 10 * time.Minute
	}
	if s.HTTPAddr == "" {
		s.HTTPAddr = ":8082"
	}
	return s
}

// BuildReconciler wires the engine from factories. The returned close function releases
// everything that was opened, in reverse order.
func BuildReconciler(cfg *config.Config, f Factories) (*reconciler.Reconciler, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	key := []byte(cfg.Crypto.ContactKey)
	cipher, err := aescbc.New(key)
	if err != nil {
		return nil, nil, errors.Wrap(err, "contact key")
	}

	st, closeStorage, err := f.NewStorage(cfg)
	if err != nil {
		return nil, nil, err
	}
	if closeStorage != nil {
		closers = append(closers, closeStorage)
	}

	carrierClient, err := f.NewCarrierClient(cfg)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	sender, closeSender, err := f.NewSender(cfg)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	if closeSender != nil {
		closers = append(closers, closeSender)
	}

	contactCache, closeCache := f.NewContactCache(cfg)
	if closeCache != nil {
		closers = append(closers, closeCache)
	}
	rl, closeRL := f.NewRateLimiter(cfg)
	if closeRL != nil {
		closers = append(closers, closeRL)
	}

	s := SettingsFromConfig(cfg)
	resolver := contacts.New(st, cipher, contactCache, s.ContactTTL)

	r := reconciler.New(st, carrierClient, resolver, sender, rl).
		WithSettings(s.PollInterval, s.RecordDelay, s.CarrierTimeout, s.NotifyTimeout, s.RateLimitPerMinute)
	return r, closeAll, nil
}

