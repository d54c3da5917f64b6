////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"encoding/json"
	"time"

	"github.com/golang-collections/collections/set"
	"github.com/pkg/errors"
	"gitlab.com/xx_network/primitives/id"

	"gitlab.com/elixxir/sociograph/encint"
)

const postVersion = 0

// Post is a published item in the graph. Like and share tallies and the
// privacy level are ciphertext handles; the liked/shared membership sets
// are public idempotence guards only and are deliberately kept apart from
// the encrypted counters.
type Post struct {
	ID           uint64
	Author       *id.ID
	ContentHash  []byte
	Likes        encint.Counter
	Shares       encint.Counter
	Timestamp    time.Time
	IsVisible    bool
	PrivacyLevel encint.Counter

	hasLiked  *set.Set
	hasShared *set.Set
}

// NewPost builds a post with empty guard sets. The counters are supplied by
// the engine, which owns their permission discipline.
func NewPost(postID uint64, author *id.ID, contentHash []byte,
	likes, shares, privacyLevel encint.Counter, ts time.Time) *Post {
	return &Post{
		ID:           postID,
		Author:       author,
		ContentHash:  contentHash,
		Likes:        likes,
		Shares:       shares,
		Timestamp:    ts,
		IsVisible:    true,
		PrivacyLevel: privacyLevel,
		hasLiked:     set.New(),
		hasShared:    set.New(),
	}
}

// HasLiked reports whether uid already liked this post.
func (p *Post) HasLiked(uid *id.ID) bool {
	return p.hasLiked.Has(*uid)
}

// HasShared reports whether uid already shared this post.
func (p *Post) HasShared(uid *id.ID) bool {
	return p.hasShared.Has(*uid)
}

// MarkLiked records uid in the liked guard set.
func (p *Post) MarkLiked(uid *id.ID) {
	p.hasLiked.Insert(*uid)
}

// MarkShared records uid in the shared guard set.
func (p *Post) MarkShared(uid *id.ID) {
	p.hasShared.Insert(*uid)
}

// postDisk is the serialized form of a Post.
type postDisk struct {
	ID           uint64         `json:"id"`
	Author       []byte         `json:"author"`
	ContentHash  []byte         `json:"contentHash"`
	Likes        encint.Counter `json:"likes"`
	Shares       encint.Counter `json:"shares"`
	Timestamp    time.Time      `json:"timestamp"`
	IsVisible    bool           `json:"isVisible"`
	PrivacyLevel encint.Counter `json:"privacyLevel"`
	HasLiked     [][]byte       `json:"hasLiked"`
	HasShared    [][]byte       `json:"hasShared"`
}

func (p *Post) marshal() ([]byte, error) {
	return json.Marshal(&postDisk{
		ID:           p.ID,
		Author:       p.Author.Marshal(),
		ContentHash:  p.ContentHash,
		Likes:        p.Likes,
		Shares:       p.Shares,
		Timestamp:    p.Timestamp,
		IsVisible:    p.IsVisible,
		PrivacyLevel: p.PrivacyLevel,
		HasLiked:     marshalIDSet(p.hasLiked),
		HasShared:    marshalIDSet(p.hasShared),
	})
}

func unmarshalPost(data []byte) (*Post, error) {
	disk := postDisk{}
	if err := json.Unmarshal(data, &disk); err != nil {
		return nil, errors.WithMessage(err, "failed to unmarshal post")
	}
	author, err := id.Unmarshal(disk.Author)
	if err != nil {
		return nil, errors.WithMessage(err, "bad post author")
	}
	hasLiked, err := unmarshalIDSet(disk.HasLiked)
	if err != nil {
		return nil, errors.WithMessage(err, "bad liked set")
	}
	hasShared, err := unmarshalIDSet(disk.HasShared)
	if err != nil {
		return nil, errors.WithMessage(err, "bad shared set")
	}
	return &Post{
		ID:           disk.ID,
		Author:       author,
		ContentHash:  disk.ContentHash,
		Likes:        disk.Likes,
		Shares:       disk.Shares,
		Timestamp:    disk.Timestamp,
		IsVisible:    disk.IsVisible,
		PrivacyLevel: disk.PrivacyLevel,
		hasLiked:     hasLiked,
		hasShared:    hasShared,
	}, nil
}

func marshalIDSet(s *set.Set) [][]byte {
	list := make([][]byte, 0, s.Len())
	s.Do(func(item interface{}) {
		uid := item.(id.ID)
		list = append(list, uid.Marshal())
	})
	return list
}

func unmarshalIDSet(list [][]byte) (*set.Set, error) {
	s := set.New()
	for _, b := range list {
		uid, err := id.Unmarshal(b)
		if err != nil {
			return nil, err
		}
		s.Insert(*uid)
	}
	return s, nil
}
