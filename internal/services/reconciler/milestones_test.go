package reconciler

import (
	"testing"

	"github.com/BearBump/DeliveryWatch/internal/models"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestMilestoneFor(t *testing.T) {
	m, ok := milestoneFor(models.StateOutForDelivery)
	require.True(t, ok)
	require.Equal(t, "out_for_delivery", m.Name)

	m, ok = milestoneFor(models.StateDelivered)
	require.True(t, ok)
	require.Equal(t, "delivered", m.Name)

	for _, st := range []string{"", models.StateInTransit, models.StateAtPickup, models.StateException, models.StateUnknown} {
		_, ok := milestoneFor(st)
		require.False(t, ok, st)
	}
}

func TestMilestone_Flag(t *testing.T) {
	rec := &models.ShipmentRecord{NotifiedOutForDelivery: models.Sent}
	require.Equal(t, models.Sent, MilestoneOutForDelivery.Flag(rec))
	require.Equal(t, models.NotSent, MilestoneDelivered.Flag(rec))

	var p models.ShipmentPatch
	MilestoneDelivered.mark(&p)
	require.True(t, p.MarkDeliveredNotified)
	require.False(t, p.MarkOutForDeliveryNotified)
}

func TestMilestone_Render(t *testing.T) {
	g := goldie.New(t)
	for _, m := range milestones {
		g.Assert(t, m.Name, []byte(m.Render("kim", "CJ대한통운", "123456789012")))
	}
}
