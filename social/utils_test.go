////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package social

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"gitlab.com/elixxir/ekv"
	"gitlab.com/xx_network/crypto/csprng"
	"gitlab.com/xx_network/primitives/id"

	"gitlab.com/elixxir/sociograph/encint"
	"gitlab.com/elixxir/sociograph/permissions"
	"gitlab.com/elixxir/sociograph/storage"
	"gitlab.com/elixxir/sociograph/storage/versioned"
)

// errEvalDown stands in for an evaluation-capability outage.
var errEvalDown = errors.New("evaluation capability offline")

// eventRecorder is a synchronous Reporter capturing engine events.
type eventRecorder struct {
	mux    sync.Mutex
	types  []string
	detail map[string][]string
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{detail: make(map[string][]string)}
}

func (r *eventRecorder) Report(_ int, _, evtType, details string) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.types = append(r.types, evtType)
	r.detail[evtType] = append(r.detail[evtType], details)
}

func (r *eventRecorder) count(evtType string) int {
	r.mux.Lock()
	defer r.mux.Unlock()
	return len(r.detail[evtType])
}

// testBed wires a manager to a local evaluator, a fresh ledger, and a
// memory-backed store.
type testBed struct {
	manager *Manager
	eval    *encint.LocalEvaluator
	ledger  *permissions.Ledger
	store   *storage.Store
	events  *eventRecorder
}

func newTestBed(t *testing.T) *testBed {
	t.Helper()
	kv := versioned.NewKV(ekv.MakeMemstore())
	eval := encint.NewLocalEvaluator(csprng.NewSystemRNG())
	ledger := permissions.NewLedger(kv)
	store := storage.NewStore(kv)
	events := newEventRecorder()
	return &testBed{
		manager: NewManager(store, ledger, eval, events),
		eval:    eval,
		ledger:  ledger,
		store:   store,
		events:  events,
	}
}

// reveal decrypts a committed counter on behalf of principal, enforcing
// the permission ledger the way the external reveal path would.
func (tb *testBed) reveal(c encint.Counter,
	principal *id.ID) (uint64, error) {
	if !tb.ledger.CanDecrypt(c.Handle, principal) {
		return 0, errors.Errorf(
			"principal %s may not decrypt %s", principal, c.Handle)
	}
	return tb.eval.Decrypt(c.Handle)
}

// mustReveal fails the test if principal is not permitted to decrypt.
func (tb *testBed) mustReveal(t *testing.T, c encint.Counter,
	principal *id.ID) uint64 {
	t.Helper()
	v, err := tb.reveal(c, principal)
	if err != nil {
		t.Fatalf("Reveal failed: %+v", err)
	}
	return v
}

func (tb *testBed) user(t *testing.T, uid *id.ID) *storage.User {
	t.Helper()
	u, ok := tb.store.GetUser(uid)
	if !ok {
		t.Fatalf("User %s not in store", uid)
	}
	return u
}

func (tb *testBed) post(t *testing.T, postID uint64) *storage.Post {
	t.Helper()
	p, ok := tb.store.GetPost(postID)
	if !ok {
		t.Fatalf("Post %d not in store", postID)
	}
	return p
}

// register creates and registers a user id from a name.
func (tb *testBed) register(t *testing.T, name string) *id.ID {
	t.Helper()
	uid := id.NewIdFromString(name, id.User, t)
	if err := tb.manager.RegisterUser(uid, []byte(name+" profile")); err != nil {
		t.Fatalf("RegisterUser(%s) error: %+v", name, err)
	}
	return uid
}
