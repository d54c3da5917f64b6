////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package event fans domain events out to registered consumers. Delivery
// happens on a dedicated goroutine so emitting an event never blocks the
// transition that produced it.
package event

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"go.uber.org/ratelimit"

	"gitlab.com/elixxir/sociograph/stoppable"
)

const eventQueueSize = 1000

// reportableEvent is one queued domain event.
type reportableEvent struct {
	Priority  int
	Category  string
	EventType string
	Details   string
}

// String satisfies the fmt.Stringer interface.
func (e reportableEvent) String() string {
	return fmt.Sprintf("Event(%d, %s, %s, %s)", e.Priority, e.Category,
		e.EventType, e.Details)
}

// Manager buffers reported events and delivers them to every registered
// callback.
type Manager struct {
	eventCh  chan reportableEvent
	eventCbs sync.Map
	rl       ratelimit.Limiter
}

// NewManager creates a Manager whose delivery loop is paced to at most
// maxDeliveriesPerSecond, so a flood of interactions cannot starve
// consumers.
func NewManager(maxDeliveriesPerSecond int) *Manager {
	return &Manager{
		eventCh: make(chan reportableEvent, eventQueueSize),
		rl: ratelimit.New(
			maxDeliveriesPerSecond, ratelimit.WithoutSlack),
	}
}

// Report enqueues an event. If the queue is full the event is dropped and
// logged loudly; the at-least-once promise holds only for a running,
// drained delivery service.
func (m *Manager) Report(priority int, category, evtType, details string) {
	re := reportableEvent{
		Priority:  priority,
		Category:  category,
		EventType: evtType,
		Details:   details,
	}
	select {
	case m.eventCh <- re:
		jww.TRACE.Printf("Event reported: %s", re)
	default:
		jww.ERROR.Printf("Event queue full, unable to report: %s", re)
	}
}

// RegisterCallback records the function to receive delivered events under
// name. Errors if the name is taken.
func (m *Manager) RegisterCallback(name string, cb Callback) error {
	if _, taken := m.eventCbs.LoadOrStore(name, cb); taken {
		return errors.Errorf(
			"event callback %q is already registered", name)
	}
	return nil
}

// UnregisterCallback removes the callback registered under name.
func (m *Manager) UnregisterCallback(name string) {
	m.eventCbs.Delete(name)
}

// EventService starts the delivery goroutine and returns its stoppable.
func (m *Manager) EventService() *stoppable.Single {
	stop := stoppable.NewSingle("EventDelivery")
	go m.deliverEvents(stop)
	return stop
}

func (m *Manager) deliverEvents(stop *stoppable.Single) {
	jww.DEBUG.Print("Event delivery routine started")
	for {
		select {
		case <-stop.Quit():
			stop.ToStopped()
			return
		case evt := <-m.eventCh:
			m.rl.Take()
			m.eventCbs.Range(func(_, cb interface{}) bool {
				cb.(Callback)(evt.Priority, evt.Category,
					evt.EventType, evt.Details)
				return true
			})
		}
	}
}
