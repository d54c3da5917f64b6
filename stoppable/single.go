////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package stoppable coordinates the shutdown of long-lived goroutines, such
// as the event delivery service.
package stoppable

import (
	"sync/atomic"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Status of a stoppable goroutine.
type Status uint32

const (
	Running Status = iota
	Stopping
	Stopped
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Single stops one goroutine through a quit channel. The goroutine must
// call ToStopped once it has drained.
type Single struct {
	name   string
	quit   chan struct{}
	status Status
}

// NewSingle returns a new Single in the Running state.
func NewSingle(name string) *Single {
	return &Single{
		name:   name,
		quit:   make(chan struct{}, 1),
		status: Running,
	}
}

// Name returns the name given at construction.
func (s *Single) Name() string {
	return s.name
}

// GetStatus returns the current status.
func (s *Single) GetStatus() Status {
	return Status(atomic.LoadUint32((*uint32)(&s.status)))
}

// IsRunning returns true while the goroutine has not been asked to stop.
func (s *Single) IsRunning() bool {
	return s.GetStatus() == Running
}

// IsStopped returns true once the goroutine confirmed its exit.
func (s *Single) IsStopped() bool {
	return s.GetStatus() == Stopped
}

// Quit returns the channel the goroutine selects on to learn it should
// exit.
func (s *Single) Quit() <-chan struct{} {
	return s.quit
}

// Close asks the goroutine to stop. It returns an error if the Single is
// not running.
func (s *Single) Close() error {
	if !atomic.CompareAndSwapUint32(
		(*uint32)(&s.status), uint32(Running), uint32(Stopping)) {
		return errors.Errorf("cannot close stoppable %q with status %s",
			s.name, s.GetStatus())
	}
	close(s.quit)
	return nil
}

// ToStopped is called by the goroutine itself after draining. Panics if the
// Single was not stopping; that means two goroutines share one Single.
func (s *Single) ToStopped() {
	if !atomic.CompareAndSwapUint32(
		(*uint32)(&s.status), uint32(Stopping), uint32(Stopped)) {
		jww.FATAL.Panicf("Stoppable %q reported stopped with status %s",
			s.name, s.GetStatus())
	}
	jww.DEBUG.Printf("Stoppable %q stopped", s.name)
}
