////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package encint

import (
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/xx_network/crypto/csprng"
)

// LocalEvaluator is an in-process stand-in for the external homomorphic
// capability. It mints random handles and keeps the plaintexts in a table,
// so tests and local deployments can exercise the full bookkeeping path and
// reveal values through the Decryptor interface. It honors the capability
// contract: every successful call returns a fresh handle and failures leave
// no ciphertext state behind.
type LocalEvaluator struct {
	rng        csprng.Source
	plaintexts map[Handle]uint64
	widths     map[Handle]Width
	failNext   error
	mux        sync.Mutex
}

// NewLocalEvaluator creates a LocalEvaluator that mints handles from the
// given source.
func NewLocalEvaluator(rng csprng.Source) *LocalEvaluator {
	return &LocalEvaluator{
		rng:        rng,
		plaintexts: make(map[Handle]uint64),
		widths:     make(map[Handle]Width),
	}
}

// FailNext forces the next evaluation request to return err. Used by tests
// to exercise transition rollback.
func (le *LocalEvaluator) FailNext(err error) {
	le.mux.Lock()
	defer le.mux.Unlock()
	le.failNext = err
}

// Constant encrypts value under a fresh handle at width w.
func (le *LocalEvaluator) Constant(w Width, value uint64) (Counter, error) {
	le.mux.Lock()
	defer le.mux.Unlock()
	if err := le.checkFailure(); err != nil {
		return Counter{}, err
	}
	return le.store(w, value%w.Modulus()), nil
}

// Add returns a fresh handle to the sum of the operands, modulo the width.
func (le *LocalEvaluator) Add(a, b Counter) (Counter, error) {
	mustMatch("add", a, b)
	le.mux.Lock()
	defer le.mux.Unlock()
	if err := le.checkFailure(); err != nil {
		return Counter{}, err
	}
	av, bv, err := le.lookup(a, b)
	if err != nil {
		return Counter{}, err
	}
	return le.store(a.Width, (av+bv)%a.Width.Modulus()), nil
}

// Sub returns a fresh handle to the difference of the operands, modulo the
// width.
func (le *LocalEvaluator) Sub(a, b Counter) (Counter, error) {
	mustMatch("sub", a, b)
	le.mux.Lock()
	defer le.mux.Unlock()
	if err := le.checkFailure(); err != nil {
		return Counter{}, err
	}
	av, bv, err := le.lookup(a, b)
	if err != nil {
		return Counter{}, err
	}
	m := a.Width.Modulus()
	return le.store(a.Width, (av+m-bv%m)%m), nil
}

// Decrypt reveals the plaintext behind h. It implements Decryptor.
// Authorization is the caller's job; the evaluator only knows ciphertexts.
func (le *LocalEvaluator) Decrypt(h Handle) (uint64, error) {
	le.mux.Lock()
	defer le.mux.Unlock()
	v, ok := le.plaintexts[h]
	if !ok {
		return 0, errors.Errorf("unknown handle %s", h)
	}
	return v, nil
}

func (le *LocalEvaluator) checkFailure() error {
	if le.failNext != nil {
		err := le.failNext
		le.failNext = nil
		return err
	}
	return nil
}

func (le *LocalEvaluator) lookup(a, b Counter) (uint64, uint64, error) {
	av, ok := le.plaintexts[a.Handle]
	if !ok {
		return 0, 0, errors.Errorf("unknown operand handle %s", a.Handle)
	}
	bv, ok := le.plaintexts[b.Handle]
	if !ok {
		return 0, 0, errors.Errorf("unknown operand handle %s", b.Handle)
	}
	return av, bv, nil
}

// store mints a fresh handle for value and records it. Must be called with
// the mutex held.
func (le *LocalEvaluator) store(w Width, value uint64) Counter {
	for {
		var h Handle
		if _, err := le.rng.Read(h[:]); err != nil {
			jww.FATAL.Panicf("Failed to mint handle: %+v", err)
		}
		if _, taken := le.plaintexts[h]; taken {
			continue
		}
		le.plaintexts[h] = value
		le.widths[h] = w
		return Counter{Handle: h, Width: w}
	}
}
