////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/xx_network/primitives/netTime"

	"gitlab.com/elixxir/sociograph/storage/versioned"
)

const (
	sequencePrefix  = "sequence"
	sequenceVersion = 0
)

// Names of the sequences owned by the store.
const (
	postSequence       = "posts"
	connectionSequence = "connections"
	messageSequence    = "messages"
)

// Sequence hands out strictly increasing 1-based ids, one counter per name.
// Values are persisted on every allocation and never reused, even when the
// entity the id was minted for fails to materialize.
type Sequence struct {
	last map[string]uint64
	kv   *versioned.KV
	mux  sync.Mutex
}

func newSequence(kv *versioned.KV) *Sequence {
	return &Sequence{
		last: make(map[string]uint64),
		kv:   kv.Prefix(sequencePrefix),
	}
}

func loadSequence(kv *versioned.KV) (*Sequence, error) {
	s := newSequence(kv)
	for _, name := range []string{
		postSequence, connectionSequence, messageSequence} {
		obj, err := s.kv.Get(name, sequenceVersion)
		if err != nil {
			if !s.kv.Exists(err) {
				continue
			}
			return nil, errors.WithMessagef(err,
				"failed to load sequence %q", name)
		}
		if len(obj.Data) != 8 {
			return nil, errors.Errorf(
				"sequence %q has %d bytes, expected 8",
				name, len(obj.Data))
		}
		s.last[name] = binary.LittleEndian.Uint64(obj.Data)
	}
	return s, nil
}

// Next allocates the next id for name and persists the high-water mark
// before returning it.
func (s *Sequence) Next(name string) uint64 {
	s.mux.Lock()
	defer s.mux.Unlock()

	next := s.last[name] + 1
	s.last[name] = next

	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, next)
	obj := versioned.Object{
		Version:   sequenceVersion,
		Timestamp: netTime.Now(),
		Data:      data,
	}
	if err := s.kv.Set(name, &obj); err != nil {
		jww.FATAL.Panicf("Failed to persist sequence %q: %+v", name, err)
	}
	return next
}

// Last returns the most recently allocated id for name, 0 if none.
func (s *Sequence) Last(name string) uint64 {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.last[name]
}
