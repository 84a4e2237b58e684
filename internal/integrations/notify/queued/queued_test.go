package queued

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/BearBump/DeliveryWatch/internal/broker/messages"
	"github.com/BearBump/DeliveryWatch/internal/integrations/notify"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	topic string
	key   []byte
	value []byte
	calls int
	errs  []error
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.calls++
	p.topic, p.key, p.value = topic, key, value
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return err
	}
	return nil
}

func TestSender_Send_Publishes(t *testing.T) {
	fp := &fakeProducer{}
	s := New(fp, "shipment.notifications")

	err := s.Send(context.Background(), notify.Message{
		Contact: "01012345678", Body: "hello", Owner: "u1", TrackingNumber: "T1", Milestone: "out_for_delivery",
	})
	require.NoError(t, err)
	require.Equal(t, 1, fp.calls)
	require.Equal(t, "shipment.notifications", fp.topic)
	require.Equal(t, []byte("u1|T1"), fp.key)

	var m messages.ShipmentNotification
	require.NoError(t, json.Unmarshal(fp.value, &m))
	require.NotEmpty(t, m.ID.String())
	require.Equal(t, "01012345678", m.Contact)
	require.Equal(t, "hello", m.Body)
	require.Equal(t, "out_for_delivery", m.Milestone)
}

func TestSender_Send_RetriesThenSucceeds(t *testing.T) {
	fp := &fakeProducer{errs: []error{errors.New("not ready")}}
	s := New(fp, "t")

	require.NoError(t, s.Send(context.Background(), notify.Message{Contact: "c", Body: "b"}))
	require.Equal(t, 2, fp.calls)
}

func TestSender_Send_GivesUp(t *testing.T) {
	boom := errors.New("boom")
	fp := &fakeProducer{errs: []error{boom, boom, boom}}
	s := New(fp, "t")

	err := s.Send(context.Background(), notify.Message{Contact: "c", Body: "b"})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 3, fp.calls)
}

func TestSender_Send_EmptyContact(t *testing.T) {
	fp := &fakeProducer{}
	require.Error(t, New(fp, "t").Send(context.Background(), notify.Message{Body: "b"}))
	require.Zero(t, fp.calls)
}
