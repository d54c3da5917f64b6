////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package permissions tracks, for every ciphertext handle committed to the
// social graph, which principals may request its decryption. The ledger
// does not enforce decryption itself; the handle-producing transitions are
// responsible for granting before commit, and VerifyCommit makes losing
// that step loud.
package permissions

import (
	"encoding/base64"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/xx_network/primitives/id"
	"gitlab.com/xx_network/primitives/netTime"

	"gitlab.com/elixxir/sociograph/encint"
	"gitlab.com/elixxir/sociograph/storage/versioned"
)

const (
	ledgerPrefix  = "permissionLedger"
	ledgerKey     = "grants"
	ledgerVersion = 0
)

// Process is the owning-process principal. It appears in the permission set
// of every handle the engine commits.
var Process = makeProcessID()

func makeProcessID() *id.ID {
	pid := &id.ID{}
	copy(pid[:], "sociographProcess")
	pid.SetType(id.Generic)
	return pid
}

// Ledger maps handles to the set of principals allowed to decrypt them.
// Freshly produced handles have no principals at all until granted.
type Ledger struct {
	grants map[encint.Handle]map[id.ID]bool
	kv     *versioned.KV
	mux    sync.RWMutex
}

// NewLedger creates an empty ledger on top of the KV.
func NewLedger(kv *versioned.KV) *Ledger {
	return &Ledger{
		grants: make(map[encint.Handle]map[id.ID]bool),
		kv:     kv.Prefix(ledgerPrefix),
	}
}

// LoadLedger restores a ledger previously saved to the KV. A missing record
// yields an empty ledger, so it is safe on first run.
func LoadLedger(kv *versioned.KV) (*Ledger, error) {
	l := NewLedger(kv)
	obj, err := l.kv.Get(ledgerKey, ledgerVersion)
	if err != nil {
		if !l.kv.Exists(err) {
			return l, nil
		}
		return nil, errors.WithMessage(err,
			"failed to load permission ledger")
	}
	if err = l.unmarshal(obj.Data); err != nil {
		return nil, err
	}
	return l, nil
}

// Grant allows principal to decrypt the value behind h.
func (l *Ledger) Grant(h encint.Handle, principal *id.ID) {
	l.mux.Lock()
	defer l.mux.Unlock()

	set, ok := l.grants[h]
	if !ok {
		set = make(map[id.ID]bool)
		l.grants[h] = set
	}
	set[*principal] = true
	l.save()
}

// Revoke removes principal from the permission set of h. No current
// transition revokes, but the contract is part of the ledger for
// completeness.
func (l *Ledger) Revoke(h encint.Handle, principal *id.ID) {
	l.mux.Lock()
	defer l.mux.Unlock()

	if set, ok := l.grants[h]; ok {
		delete(set, *principal)
		if len(set) == 0 {
			delete(l.grants, h)
		}
	}
	l.save()
}

// CanDecrypt reports whether principal may decrypt the value behind h.
func (l *Ledger) CanDecrypt(h encint.Handle, principal *id.ID) bool {
	l.mux.RLock()
	defer l.mux.RUnlock()
	return l.grants[h][*principal]
}

// Principals returns every principal with decrypt permission on h.
func (l *Ledger) Principals(h encint.Handle) []*id.ID {
	l.mux.RLock()
	defer l.mux.RUnlock()

	list := make([]*id.ID, 0, len(l.grants[h]))
	for principal := range l.grants[h] {
		p := principal
		list = append(list, &p)
	}
	return list
}

// VerifyCommit panics if any of the listed principals cannot decrypt h. It
// runs at the end of every transition that produced a handle; a failure
// here means a value was about to be committed that somebody documented as
// a reader can never read, which is corruption, not a caller error.
func (l *Ledger) VerifyCommit(h encint.Handle, principals ...*id.ID) {
	for _, principal := range principals {
		if !l.CanDecrypt(h, principal) {
			jww.FATAL.Panicf("Handle %s reached commit without "+
				"decrypt permission for %s", h, principal)
		}
	}
}

// ledgerDisk is the serialized form: handle string to principal id bytes.
type ledgerDisk struct {
	Grants map[string][][]byte `json:"grants"`
}

// save persists the whole ledger. Must be called with the mutex held.
func (l *Ledger) save() {
	disk := ledgerDisk{Grants: make(map[string][][]byte, len(l.grants))}
	for h, set := range l.grants {
		principals := make([][]byte, 0, len(set))
		for principal := range set {
			p := principal
			principals = append(principals, p.Marshal())
		}
		disk.Grants[h.String()] = principals
	}

	data, err := json.Marshal(&disk)
	if err != nil {
		jww.FATAL.Panicf("Failed to marshal permission ledger: %+v", err)
	}
	obj := versioned.Object{
		Version:   ledgerVersion,
		Timestamp: netTime.Now(),
		Data:      data,
	}
	if err = l.kv.Set(ledgerKey, &obj); err != nil {
		jww.FATAL.Panicf("Failed to store permission ledger: %+v", err)
	}
}

func (l *Ledger) unmarshal(data []byte) error {
	disk := ledgerDisk{}
	if err := json.Unmarshal(data, &disk); err != nil {
		return errors.WithMessage(err,
			"failed to unmarshal permission ledger")
	}

	for hStr, principals := range disk.Grants {
		hBytes, err := decodeHandle(hStr)
		if err != nil {
			return err
		}
		set := make(map[id.ID]bool, len(principals))
		for _, pBytes := range principals {
			principal, err := id.Unmarshal(pBytes)
			if err != nil {
				return errors.WithMessagef(err,
					"bad principal on handle %s", hStr)
			}
			set[*principal] = true
		}
		l.grants[hBytes] = set
	}
	return nil
}

func decodeHandle(s string) (encint.Handle, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return encint.Handle{}, errors.WithMessagef(err,
			"bad handle key %q in permission ledger", s)
	}
	return encint.UnmarshalHandle(raw)
}
