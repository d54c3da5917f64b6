////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package social is the interaction engine of the encrypted social graph.
// Every operation is one atomic transition: guards run first, then all
// homomorphic evaluations, then permission grants, and only then does
// anything reach the store. A failed evaluation aborts the transition with
// no partial counter updates and no partial grants committed.
package social

import (
	"sync"

	"gitlab.com/xx_network/primitives/id"

	"gitlab.com/elixxir/sociograph/catalog"
	"gitlab.com/elixxir/sociograph/encint"
	"gitlab.com/elixxir/sociograph/event"
	"gitlab.com/elixxir/sociograph/permissions"
	"gitlab.com/elixxir/sociograph/storage"
)

// Plaintext constants of the engine. They enter the ciphertext domain
// through encint.Constant and are never applied locally.
const (
	initialReputation = 50
	initialStrength   = 25
	likeReputation    = 1
	shareReputation   = 2
	followReputation  = 1
	maxPrivacyLevel   = 2
	eventPriority     = 1
)

// Manager is the interaction engine. A single mutex serializes all
// mutating operations; queries read through the store's own lock.
type Manager struct {
	store  *storage.Store
	ledger *permissions.Ledger
	eval   encint.Evaluator
	events event.Reporter

	mux sync.Mutex
}

// NewManager assembles the engine from its collaborators. The evaluator is
// the external homomorphic capability; events is where committed
// transitions are reported.
func NewManager(store *storage.Store, ledger *permissions.Ledger,
	eval encint.Evaluator, events event.Reporter) *Manager {
	return &Manager{
		store:  store,
		ledger: ledger,
		eval:   eval,
		events: events,
	}
}

// requireRegistered is the registration gate shared by every mutating
// operation except RegisterUser.
func (m *Manager) requireRegistered(caller *id.ID) (*storage.User, error) {
	u, ok := m.store.GetUser(caller)
	if !ok || !u.Exists {
		return nil, NotRegisteredErr
	}
	return u, nil
}

// grant gives the owning process and the listed readers decrypt permission
// on the counter, then verifies the grants took. Runs before the handle is
// committed to the store, inside the same transition that derived it.
func (m *Manager) grant(c encint.Counter, readers ...*id.ID) {
	m.ledger.Grant(c.Handle, permissions.Process)
	for _, reader := range readers {
		m.ledger.Grant(c.Handle, reader)
	}
	m.ledger.VerifyCommit(c.Handle,
		append([]*id.ID{permissions.Process}, readers...)...)
}

func (m *Manager) report(evtType, details string) {
	m.events.Report(eventPriority, catalog.SocialGraph, evtType, details)
}
