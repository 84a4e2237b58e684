package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/DeliveryWatch/internal/integrations/carrier"
	"github.com/BearBump/DeliveryWatch/internal/integrations/notify"
	"github.com/BearBump/DeliveryWatch/internal/models"
	reconcilermocks "github.com/BearBump/DeliveryWatch/internal/services/reconciler/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReconcilerSuite struct {
	suite.Suite

	store    *reconcilermocks.MockShipmentStore
	carrier  *reconcilermocks.MockCarrierClient
	resolver *reconcilermocks.MockContactResolver
	sender   *reconcilermocks.MockSender
	rl       *reconcilermocks.MockRateLimiter

	r *Reconciler
}

func (s *ReconcilerSuite) SetupTest() {
	s.store = &reconcilermocks.MockShipmentStore{}
	s.carrier = &reconcilermocks.MockCarrierClient{}
	s.resolver = &reconcilermocks.MockContactResolver{}
	s.sender = &reconcilermocks.MockSender{}
	s.rl = &reconcilermocks.MockRateLimiter{}

	s.r = New(s.store, s.carrier, s.resolver, s.sender, s.rl).
		WithSettings(0, -1, time.Second, time.Second, 30)
	s.r.now = func() time.Time { return time.Date(2024, 1, 1, 1, 2, 0, 0, time.UTC) }
}

func (s *ReconcilerSuite) TearDownTest() {
	s.store.AssertExpectations(s.T())
	s.carrier.AssertExpectations(s.T())
	s.resolver.AssertExpectations(s.T())
	s.sender.AssertExpectations(s.T())
	s.rl.AssertExpectations(s.T())
}

func (s *ReconcilerSuite) TestOutForDelivery_EndToEnd() {
	rec := &models.ShipmentRecord{
		Owner: "u1", CarrierID: "cj", CarrierName: "CJ대한통운", TrackingNumber: "T1",
		StateID: models.StateInTransit,
	}
	s.store.On("FindNotTerminal", mock.Anything).Return([]*models.ShipmentRecord{rec}, nil).Once()
	s.rl.On("Allow", mock.Anything, "rl:carrier:cj:202401010102", int64(30), 70*time.Second).
		Return(true, int64(1), nil).Once()
	s.carrier.On("Track", mock.Anything, "cj", "T1").Return(carrier.Snapshot{
		StateID:   models.StateOutForDelivery,
		StateText: "배송출발",
		Events:    []carrier.ProgressEvent{{Time: "2024-01-01T10:00:00+09:00"}},
	}, nil).Once()
	s.resolver.On("Resolve", mock.Anything, "u1").
		Return(models.OwnerContact{Owner: "u1", Nickname: "kim", Phone: "01012345678"}, nil).Once()
	s.sender.On("Send", mock.Anything, notify.Message{
		Contact:        "01012345678",
		Body:           "[kim]님, CJ대한통운(T1) 상품이 배달을 시작합니다.",
		Owner:          "u1",
		TrackingNumber: "T1",
		Milestone:      "out_for_delivery",
	}).Return(nil).Once()

	state, text, when := models.StateOutForDelivery, "배송출발", "2024-01-01 10:00"
	s.store.On("PatchShipment", mock.Anything, "u1", "T1", models.ShipmentPatch{
		StateID:                    &state,
		StateText:                  &text,
		LastEventTime:              &when,
		MarkOutForDeliveryNotified: true,
	}).Return(nil).Once()

	rep := s.r.RunCycle(context.Background())
	s.Require().Equal(CycleReport{Candidates: 1, Processed: 1, Patched: 1, Notified: 1}, rep)
}

func (s *ReconcilerSuite) TestRateLimited_SkipsCarrierCall() {
	rec := &models.ShipmentRecord{Owner: "u1", CarrierID: "cj", TrackingNumber: "T1"}
	s.store.On("FindNotTerminal", mock.Anything).Return([]*models.ShipmentRecord{rec}, nil).Once()
	s.rl.On("Allow", mock.Anything, mock.Anything, int64(30), mock.Anything).Return(false, int64(31), nil).Once()

	rep := s.r.RunCycle(context.Background())
	s.Require().Zero(rep.Errors)
	s.Require().EqualValues(1, s.r.Stats().TotalRateLimited)
	s.carrier.AssertNotCalled(s.T(), "Track", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ReconcilerSuite) TestRateLimiterError_SkipsRecord() {
	rec := &models.ShipmentRecord{Owner: "u1", CarrierID: "cj", TrackingNumber: "T1"}
	s.store.On("FindNotTerminal", mock.Anything).Return([]*models.ShipmentRecord{rec}, nil).Once()
	s.rl.On("Allow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(false, int64(0), errors.New("redis down")).Once()

	rep := s.r.RunCycle(context.Background())
	s.Require().Equal(1, rep.Errors)
}

func (s *ReconcilerSuite) TestCarrierCallHasDeadline() {
	rec := &models.ShipmentRecord{Owner: "u1", CarrierID: "cj", TrackingNumber: "T1", StateID: models.StateInTransit}
	s.store.On("FindNotTerminal", mock.Anything).Return([]*models.ShipmentRecord{rec}, nil).Once()
	s.rl.On("Allow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, int64(1), nil).Once()
	s.carrier.On("Track", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), "cj", "T1").Return(carrier.Snapshot{StateID: models.StateInTransit}, nil).Once()

	rep := s.r.RunCycle(context.Background())
	s.Require().Zero(rep.Patched)
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerSuite))
}
