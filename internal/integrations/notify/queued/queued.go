package queued

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BearBump/DeliveryWatch/internal/broker/messages"
	"github.com/BearBump/DeliveryWatch/internal/integrations/notify"
	"github.com/pkg/errors"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Sender hands notifications to Kafka; notify-relay performs the actual SMS delivery.
// A successful publish counts as a successful send.
type Sender struct {
	producer Producer
	topic    string
	attempts int
	now      func() time.Time
}

func New(producer Producer, topic string) *Sender {
	return &Sender{producer: producer, topic: topic, attempts: 3, now: time.Now}
}

func (s *Sender) Send(ctx context.Context, msg notify.Message) error {
	if msg.Contact == "" {
		return errors.New("empty contact")
	}

	m := messages.NewShipmentNotification(msg.Owner, msg.TrackingNumber, msg.Milestone, msg.Contact, msg.Body, s.now())
	b, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "marshal notification")
	}
	key := []byte(msg.Owner + "|" + msg.TrackingNumber)

	// Kafka может быть недоступна короткое время: небольшой retry.
	var pubErr error
	for i := 0; i < s.attempts; i++ {
		if pubErr = s.producer.Publish(ctx, s.topic, key, b); pubErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "publish notification")
		case <-time.After(time.Duration(150*(i+1)) * time.Millisecond):
		}
	}
	return errors.Wrap(pubErr, "publish notification")
}
