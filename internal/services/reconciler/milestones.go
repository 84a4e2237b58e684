package reconciler

import (
	"fmt"

	"github.com/BearBump/DeliveryWatch/internal/models"
)

// Milestone is a state transition the owner gets told about, at most once per shipment.
type Milestone struct {
	Name    string
	StateID string

	template string
	flag     func(r *models.ShipmentRecord) models.NotifyState
	mark     func(p *models.ShipmentPatch)
}

var (
	MilestoneOutForDelivery = Milestone{
		Name:     "out_for_delivery",
		StateID:  models.StateOutForDelivery,
		template: "[%s]님, %s(%s) 상품이 배달을 시작합니다.",
		flag:     func(r *models.ShipmentRecord) models.NotifyState { return r.NotifiedOutForDelivery },
		mark:     func(p *models.ShipmentPatch) { p.MarkOutForDeliveryNotified = true },
	}
	MilestoneDelivered = Milestone{
		Name:     "delivered",
		StateID:  models.StateDelivered,
		template: "[%s]님, %s(%s) 상품의 배달이 완료되었습니다.",
		flag:     func(r *models.ShipmentRecord) models.NotifyState { return r.NotifiedDelivered },
		mark:     func(p *models.ShipmentPatch) { p.MarkDeliveredNotified = true },
	}
)

var milestones = []Milestone{MilestoneOutForDelivery, MilestoneDelivered}

func milestoneFor(stateID string) (Milestone, bool) {
	for _, m := range milestones {
		if m.StateID == stateID {
			return m, true
		}
	}
	return Milestone{}, false
}

func (m Milestone) Flag(r *models.ShipmentRecord) models.NotifyState {
	return m.flag(r)
}

// Render builds the message body: nickname, carrier name, tracking number.
func (m Milestone) Render(nickname, carrierName, trackingNumber string) string {
	return fmt.Sprintf(m.template, nickname, carrierName, trackingNumber)
}
