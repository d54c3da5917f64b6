////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gitlab.com/xx_network/primitives/id"
)

const edgesVersion = 0

// followEdges is the directional follower → followee relation. The edge
// boolean is the engine's sole source of truth for whether a follower-count
// decrement is legal, since the encrypted counters cannot be range-checked.
type followEdges struct {
	edges map[id.ID]map[id.ID]bool
}

func newFollowEdges() *followEdges {
	return &followEdges{edges: make(map[id.ID]map[id.ID]bool)}
}

func (f *followEdges) set(follower, followee *id.ID) {
	m, ok := f.edges[*follower]
	if !ok {
		m = make(map[id.ID]bool)
		f.edges[*follower] = m
	}
	m[*followee] = true
}

func (f *followEdges) clear(follower, followee *id.ID) {
	if m, ok := f.edges[*follower]; ok {
		delete(m, *followee)
		if len(m) == 0 {
			delete(f.edges, *follower)
		}
	}
}

func (f *followEdges) has(follower, followee *id.ID) bool {
	return f.edges[*follower][*followee]
}

func (f *followEdges) count() int {
	n := 0
	for _, m := range f.edges {
		n += len(m)
	}
	return n
}

type edgePair struct {
	Follower []byte `json:"follower"`
	Followee []byte `json:"followee"`
}

func (f *followEdges) marshal() ([]byte, error) {
	pairs := make([]edgePair, 0, f.count())
	for follower, m := range f.edges {
		for followee := range m {
			fr, fe := follower, followee
			pairs = append(pairs, edgePair{
				Follower: fr.Marshal(),
				Followee: fe.Marshal(),
			})
		}
	}
	return json.Marshal(pairs)
}

func unmarshalFollowEdges(data []byte) (*followEdges, error) {
	var pairs []edgePair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, errors.WithMessage(err,
			"failed to unmarshal follow edges")
	}
	f := newFollowEdges()
	for _, p := range pairs {
		follower, err := id.Unmarshal(p.Follower)
		if err != nil {
			return nil, errors.WithMessage(err, "bad follower id")
		}
		followee, err := id.Unmarshal(p.Followee)
		if err != nil {
			return nil, errors.WithMessage(err, "bad followee id")
		}
		f.set(follower, followee)
	}
	return f, nil
}
