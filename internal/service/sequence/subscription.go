package sequence

import (
	"github.com/google/uuid"

	"github.com/oshokin/sprint-start/internal/domain/starter"
)

// DefaultSubscriptionBuffer fits a full 30-second run without drops.
const DefaultSubscriptionBuffer = 64

// Subscription delivers snapshots from a Controller.
type Subscription struct {
	// id identifies the subscription in logs.
	id uuid.UUID
	// ch carries the snapshots; closed on Unsubscribe or controller Close.
	ch chan starter.Snapshot
	// ctrl is the publishing controller.
	ctrl *Controller
}

func newSubscription(ctrl *Controller, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultSubscriptionBuffer
	}

	return &Subscription{
		id:   uuid.New(),
		ch:   make(chan starter.Snapshot, buffer),
		ctrl: ctrl,
	}
}

// ID returns the subscription identifier.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// C returns the snapshot channel.
func (s *Subscription) C() <-chan starter.Snapshot {
	return s.ch
}

// Unsubscribe stops delivery and closes the channel.
func (s *Subscription) Unsubscribe() {
	s.ctrl.do(func() {
		s.ctrl.unsubscribe(s.id)
	})
}
