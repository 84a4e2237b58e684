package fake

import (
	"context"
	"testing"

	"github.com/BearBump/DeliveryWatch/internal/models"
	"github.com/stretchr/testify/require"
)

func TestFakeClient_Track(t *testing.T) {
	c := New()
	snap, err := c.Track(context.Background(), "kr.cjlogistics", "A1")
	require.NoError(t, err)
	require.NotEmpty(t, snap.StateID)
	require.NotEmpty(t, snap.Events)

	last, ok := snap.LastEvent()
	require.True(t, ok)
	require.Equal(t, snap.StateID, last.StatusID)
}

func TestFakeClient_Track_AdvancesUntilDelivered(t *testing.T) {
	c := New()
	var states []string
	for i := 0; i < 6; i++ {
		snap, err := c.Track(context.Background(), "kr.cjlogistics", "A1")
		require.NoError(t, err)
		states = append(states, snap.StateID)
	}
	require.Equal(t, models.StateDelivered, states[len(states)-1])
	require.Contains(t, states, models.StateOutForDelivery)
}

func TestFakeClient_Track_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Track(ctx, "kr.cjlogistics", "A1")
	require.ErrorIs(t, err, context.Canceled)
}
