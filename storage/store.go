////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package storage owns the public half of the social graph: users, posts,
// connections, private messages, the follow-edge relation, and the id
// sequences. It is write-through onto a versioned KV so a store can be
// reloaded from the same ledger after a restart. Only the interaction
// engine writes; readers go through the accessors under a read lock.
package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/xx_network/primitives/id"
	"gitlab.com/xx_network/primitives/netTime"

	"gitlab.com/elixxir/sociograph/storage/versioned"
)

const (
	graphPrefix         = "socialGraph"
	userKeyPrefix       = "user/"
	postKeyPrefix       = "post/"
	connectionKeyPrefix = "connection/"
	messageKeyPrefix    = "message/"
	userRegistryKey     = "userRegistry"
	userRegistryVersion = 0
	edgesKey            = "followEdges"
)

// Store is the social graph store. All maps are protected by the RWMutex;
// mutations additionally persist to the KV before returning.
type Store struct {
	users         map[id.ID]*User
	posts         map[uint64]*Post
	connections   map[uint64]*Connection
	messages      map[uint64]*PrivateMessage
	userPosts     map[id.ID][]uint64
	userMessages  map[id.ID][]uint64
	connectionIDs map[id.ID]map[id.ID]uint64
	edges         *followEdges
	seq           *Sequence

	kv  *versioned.KV
	mux sync.RWMutex
}

// NetworkStats is the public aggregate view of the graph.
type NetworkStats struct {
	Users       int
	Posts       int
	Connections int
	Messages    int
	FollowEdges int
}

// NewStore creates an empty store on top of the KV.
func NewStore(kv *versioned.KV) *Store {
	kv = kv.Prefix(graphPrefix)
	return &Store{
		users:         make(map[id.ID]*User),
		posts:         make(map[uint64]*Post),
		connections:   make(map[uint64]*Connection),
		messages:      make(map[uint64]*PrivateMessage),
		userPosts:     make(map[id.ID][]uint64),
		userMessages:  make(map[id.ID][]uint64),
		connectionIDs: make(map[id.ID]map[id.ID]uint64),
		edges:         newFollowEdges(),
		seq:           newSequence(kv),
		kv:            kv,
	}
}

// LoadStore restores a store previously written to the KV. The relational
// indices are rebuilt from the entities; only the follow edges carry their
// own record, since unfollow makes them underivable from connections.
func LoadStore(kv *versioned.KV) (*Store, error) {
	s := NewStore(kv)

	seq, err := loadSequence(s.kv)
	if err != nil {
		return nil, err
	}
	s.seq = seq

	if err = s.loadUsers(); err != nil {
		return nil, err
	}
	if err = s.loadPosts(); err != nil {
		return nil, err
	}
	if err = s.loadConnections(); err != nil {
		return nil, err
	}
	if err = s.loadMessages(); err != nil {
		return nil, err
	}
	if err = s.loadEdges(); err != nil {
		return nil, err
	}
	return s, nil
}

/* user operations */

// UpsertUser writes the user to the store and the KV. First insert of an
// identity also records it in the user registry.
func (s *Store) UpsertUser(u *User) {
	s.mux.Lock()
	defer s.mux.Unlock()

	_, known := s.users[*u.ID]
	s.users[*u.ID] = u
	s.persist(userKeyPrefix+u.ID.String(), userVersion, u.marshal)
	if !known {
		s.saveUserRegistry()
	}
}

// GetUser returns the user record for uid. The second return is false for
// identities that never registered.
func (s *Store) GetUser(uid *id.ID) (*User, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	u, ok := s.users[*uid]
	return u, ok
}

/* post operations */

// NextPostID allocates a post id. Allocation is permanent: the id is never
// reused even if the post is not committed.
func (s *Store) NextPostID() uint64 {
	return s.seq.Next(postSequence)
}

// UpsertPost writes the post to the store and the KV. First insert appends
// the post to its author's index, preserving creation order.
func (s *Store) UpsertPost(p *Post) {
	s.mux.Lock()
	defer s.mux.Unlock()

	_, known := s.posts[p.ID]
	s.posts[p.ID] = p
	s.persist(postKey(p.ID), postVersion, p.marshal)
	if !known {
		s.userPosts[*p.Author] = append(s.userPosts[*p.Author], p.ID)
	}
}

// GetPost returns the post with the given id.
func (s *Store) GetPost(postID uint64) (*Post, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	p, ok := s.posts[postID]
	return p, ok
}

// UserPostIDs returns the ids of the user's posts in creation order.
func (s *Store) UserPostIDs(uid *id.ID) []uint64 {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ids := s.userPosts[*uid]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

/* connection operations */

// NextConnectionID allocates a connection id.
func (s *Store) NextConnectionID() uint64 {
	return s.seq.Next(connectionSequence)
}

// UpsertConnection writes the connection and indexes its unordered pair,
// so ConnectionID(a,b) and ConnectionID(b,a) resolve to the same id.
func (s *Store) UpsertConnection(c *Connection) {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.connections[c.ID] = c
	s.persist(connectionKey(c.ID), connectionVersion, c.marshal)
	s.indexConnection(c)
}

// GetConnection returns the connection with the given id.
func (s *Store) GetConnection(connectionID uint64) (*Connection, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	c, ok := s.connections[connectionID]
	return c, ok
}

// ConnectionID resolves the connection id for the unordered pair (a, b).
func (s *Store) ConnectionID(a, b *id.ID) (uint64, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	cid, ok := s.connectionIDs[*a][*b]
	return cid, ok
}

func (s *Store) indexConnection(c *Connection) {
	for _, pair := range [][2]*id.ID{{c.User1, c.User2}, {c.User2, c.User1}} {
		m, ok := s.connectionIDs[*pair[0]]
		if !ok {
			m = make(map[id.ID]uint64)
			s.connectionIDs[*pair[0]] = m
		}
		m[*pair[1]] = c.ID
	}
}

/* message operations */

// NextMessageID allocates a message id.
func (s *Store) NextMessageID() uint64 {
	return s.seq.Next(messageSequence)
}

// AddMessage writes the message and appends it to the recipient's index.
func (s *Store) AddMessage(m *PrivateMessage) {
	s.mux.Lock()
	defer s.mux.Unlock()

	_, known := s.messages[m.ID]
	s.messages[m.ID] = m
	s.persist(messageKey(m.ID), messageVersion, m.marshal)
	if !known {
		s.userMessages[*m.Recipient] =
			append(s.userMessages[*m.Recipient], m.ID)
	}
}

// UpsertMessage rewrites an existing message, e.g. after a read receipt.
func (s *Store) UpsertMessage(m *PrivateMessage) {
	s.AddMessage(m)
}

// GetMessage returns the message with the given id.
func (s *Store) GetMessage(messageID uint64) (*PrivateMessage, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	m, ok := s.messages[messageID]
	return m, ok
}

// UserMessageIDs returns the ids of messages addressed to uid, in arrival
// order.
func (s *Store) UserMessageIDs(uid *id.ID) []uint64 {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ids := s.userMessages[*uid]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

/* follow edges */

// SetFollow records the directional edge follower → followee.
func (s *Store) SetFollow(follower, followee *id.ID) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.edges.set(follower, followee)
	s.saveEdges()
}

// ClearFollow removes the directional edge follower → followee.
func (s *Store) ClearFollow(follower, followee *id.ID) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.edges.clear(follower, followee)
	s.saveEdges()
}

// IsFollowing reports whether the edge follower → followee exists.
func (s *Store) IsFollowing(follower, followee *id.ID) bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.edges.has(follower, followee)
}

// Stats returns the public aggregate counts.
func (s *Store) Stats() NetworkStats {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return NetworkStats{
		Users:       len(s.users),
		Posts:       len(s.posts),
		Connections: len(s.connections),
		Messages:    len(s.messages),
		FollowEdges: s.edges.count(),
	}
}

/* persistence plumbing */

// persist writes one entity record. A failure to serialize or store inside
// a transition cannot be rolled back, so it is fatal.
func (s *Store) persist(key string, version uint64,
	marshal func() ([]byte, error)) {
	data, err := marshal()
	if err != nil {
		jww.FATAL.Panicf("Failed to marshal %q: %+v", key, err)
	}
	obj := versioned.Object{
		Version:   version,
		Timestamp: netTime.Now(),
		Data:      data,
	}
	if err = s.kv.Set(key, &obj); err != nil {
		jww.FATAL.Panicf("Failed to store %q: %+v", key, err)
	}
}

func (s *Store) saveUserRegistry() {
	registry := make([][]byte, 0, len(s.users))
	for uid := range s.users {
		u := uid
		registry = append(registry, u.Marshal())
	}
	data, err := json.Marshal(registry)
	if err != nil {
		jww.FATAL.Panicf("Failed to marshal user registry: %+v", err)
	}
	obj := versioned.Object{
		Version:   userRegistryVersion,
		Timestamp: netTime.Now(),
		Data:      data,
	}
	if err = s.kv.Set(userRegistryKey, &obj); err != nil {
		jww.FATAL.Panicf("Failed to store user registry: %+v", err)
	}
}

func (s *Store) saveEdges() {
	data, err := s.edges.marshal()
	if err != nil {
		jww.FATAL.Panicf("Failed to marshal follow edges: %+v", err)
	}
	obj := versioned.Object{
		Version:   edgesVersion,
		Timestamp: netTime.Now(),
		Data:      data,
	}
	if err = s.kv.Set(edgesKey, &obj); err != nil {
		jww.FATAL.Panicf("Failed to store follow edges: %+v", err)
	}
}

func (s *Store) loadUsers() error {
	obj, err := s.kv.Get(userRegistryKey, userRegistryVersion)
	if err != nil {
		if !s.kv.Exists(err) {
			return nil
		}
		return errors.WithMessage(err, "failed to load user registry")
	}
	var registry [][]byte
	if err = json.Unmarshal(obj.Data, &registry); err != nil {
		return errors.WithMessage(err,
			"failed to unmarshal user registry")
	}

	for _, uidBytes := range registry {
		uid, err := id.Unmarshal(uidBytes)
		if err != nil {
			return errors.WithMessage(err, "bad id in user registry")
		}
		uObj, err := s.kv.Get(userKeyPrefix+uid.String(), userVersion)
		if err != nil {
			return errors.WithMessagef(err,
				"registered user %s has no record", uid)
		}
		u, err := unmarshalUser(uObj.Data)
		if err != nil {
			return err
		}
		s.users[*u.ID] = u
	}
	return nil
}

func (s *Store) loadPosts() error {
	for n := uint64(1); n <= s.seq.Last(postSequence); n++ {
		obj, err := s.kv.Get(postKey(n), postVersion)
		if err != nil {
			if !s.kv.Exists(err) {
				// Allocated id with no committed entity; the
				// id stays burned.
				jww.DEBUG.Printf("No post for id %d", n)
				continue
			}
			return errors.WithMessagef(err, "failed to load post %d", n)
		}
		p, err := unmarshalPost(obj.Data)
		if err != nil {
			return err
		}
		s.posts[p.ID] = p
		s.userPosts[*p.Author] = append(s.userPosts[*p.Author], p.ID)
	}
	return nil
}

func (s *Store) loadConnections() error {
	for n := uint64(1); n <= s.seq.Last(connectionSequence); n++ {
		obj, err := s.kv.Get(connectionKey(n), connectionVersion)
		if err != nil {
			if !s.kv.Exists(err) {
				jww.DEBUG.Printf("No connection for id %d", n)
				continue
			}
			return errors.WithMessagef(err,
				"failed to load connection %d", n)
		}
		c, err := unmarshalConnection(obj.Data)
		if err != nil {
			return err
		}
		s.connections[c.ID] = c
		s.indexConnection(c)
	}
	return nil
}

func (s *Store) loadMessages() error {
	for n := uint64(1); n <= s.seq.Last(messageSequence); n++ {
		obj, err := s.kv.Get(messageKey(n), messageVersion)
		if err != nil {
			if !s.kv.Exists(err) {
				jww.DEBUG.Printf("No message for id %d", n)
				continue
			}
			return errors.WithMessagef(err,
				"failed to load message %d", n)
		}
		m, err := unmarshalMessage(obj.Data)
		if err != nil {
			return err
		}
		s.messages[m.ID] = m
		s.userMessages[*m.Recipient] =
			append(s.userMessages[*m.Recipient], m.ID)
	}
	return nil
}

func (s *Store) loadEdges() error {
	obj, err := s.kv.Get(edgesKey, edgesVersion)
	if err != nil {
		if !s.kv.Exists(err) {
			return nil
		}
		return errors.WithMessage(err, "failed to load follow edges")
	}
	edges, err := unmarshalFollowEdges(obj.Data)
	if err != nil {
		return err
	}
	s.edges = edges
	return nil
}

func postKey(n uint64) string       { return fmt.Sprintf("%s%d", postKeyPrefix, n) }
func connectionKey(n uint64) string { return fmt.Sprintf("%s%d", connectionKeyPrefix, n) }
func messageKey(n uint64) string    { return fmt.Sprintf("%s%d", messageKeyPrefix, n) }
