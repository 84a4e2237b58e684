package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/BearBump/DeliveryWatch/internal/broker/messages"
	"github.com/BearBump/DeliveryWatch/internal/integrations/notify/smsgateway"
	"github.com/pkg/errors"
)

type textSender interface {
	SendText(ctx context.Context, contact, body string) error
}

type deduper interface {
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

// relay delivers queued shipment notifications by SMS, each message id at most once
// within the dedupe TTL. Transient gateway failures are retried until they succeed or
// ctx ends; rejected messages are dropped.
type relay struct {
	sender      textSender
	dedup       deduper
	dedupTTL    time.Duration
	sendTimeout time.Duration
	backoff     time.Duration
	maxBackoff  time.Duration
}

func newRelay(sender textSender, dedup deduper, dedupTTL, sendTimeout time.Duration) *relay {
	return &relay{
		sender:      sender,
		dedup:       dedup,
		dedupTTL:    dedupTTL,
		sendTimeout: sendTimeout,
		backoff:     time.Second,
		maxBackoff:  time.Minute,
	}
}

func dedupKey(m messages.ShipmentNotification) string {
	return "relay:sent:" + m.ID.String()
}

// handle returns an error only when the message should be redelivered.
func (r *relay) handle(ctx context.Context, value []byte) error {
	var m messages.ShipmentNotification
	if err := json.Unmarshal(value, &m); err != nil {
		slog.Error("drop malformed notification", "error", err.Error())
		return nil
	}
	log := slog.With("id", m.ID.String(), "owner", m.Owner, "tracking_number", m.TrackingNumber, "milestone", m.Milestone)

	fresh, err := r.dedup.SetIfAbsent(ctx, dedupKey(m), []byte("1"), r.dedupTTL)
	if err != nil {
		return errors.Wrap(err, "dedupe")
	}
	if !fresh {
		log.Info("skip duplicate notification")
		return nil
	}

	if err := r.send(ctx, m); err != nil {
		if errors.Is(err, smsgateway.ErrRejected) {
			// Повторная отправка не поможет: коммитим и идём дальше, маркер оставляем.
			log.Error("drop rejected notification", "error", err.Error())
			return nil
		}
		// Release the marker so the redelivered message is sent.
		if derr := r.dedup.Delete(context.WithoutCancel(ctx), dedupKey(m)); derr != nil {
			log.Error("release dedupe key", "error", derr.Error())
		}
		return err
	}
	log.Info("notification delivered")
	return nil
}

// send returns nil, a rejection, or ctx's error. Anything else is retried with a growing
// pause capped at maxBackoff.
func (r *relay) send(ctx context.Context, m messages.ShipmentNotification) error {
	wait := r.backoff
	for attempt := 1; ; attempt++ {
		sctx, cancel := context.WithTimeout(ctx, r.sendTimeout)
		err := r.sender.SendText(sctx, m.Contact, m.Body)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, smsgateway.ErrRejected) {
			return errors.Wrap(err, "send sms")
		}
		slog.Warn("sms send failed, retrying",
			"id", m.ID.String(), "attempt", attempt, "retry_in", wait.String(), "error", err.Error())

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Wrap(ctx.Err(), "send sms")
		case <-t.C:
		}
		if wait *= 2; wait > r.maxBackoff {
			wait = r.maxBackoff
		}
	}
}

func runRelay(ctx context.Context, r *relay, consumer kafkaConsumer, topic, group string) error {
	slog.Info("kafka consumer started", "topic", topic, "group", group)
	err := consumer.Consume(ctx, func(_ []byte, value []byte) error {
		return r.handle(ctx, value)
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
