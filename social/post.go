////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package social

import (
	"fmt"

	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/xx_network/primitives/id"
	"gitlab.com/xx_network/primitives/netTime"

	"gitlab.com/elixxir/sociograph/catalog"
	"gitlab.com/elixxir/sociograph/encint"
	"gitlab.com/elixxir/sociograph/storage"
)

// CreatePost publishes a post for the caller and returns its id. The like
// and share tallies start at an encrypted zero, and the privacy level is
// itself encrypted so even the access tier of a post stays private.
func (m *Manager) CreatePost(caller *id.ID, contentHash []byte,
	privacyLevel uint8) (uint64, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	if _, err := m.requireRegistered(caller); err != nil {
		return 0, err
	}
	if privacyLevel > maxPrivacyLevel {
		return 0, InvalidPrivacyLevelErr
	}

	likes, err := encint.Constant(m.eval, encint.Width32, 0)
	if err != nil {
		return 0, evalFailed(err, "createPost")
	}
	shares, err := encint.Constant(m.eval, encint.Width32, 0)
	if err != nil {
		return 0, evalFailed(err, "createPost")
	}
	level, err := encint.Constant(
		m.eval, encint.Width8, uint64(privacyLevel))
	if err != nil {
		return 0, evalFailed(err, "createPost")
	}

	m.grant(likes, caller)
	m.grant(shares, caller)
	m.grant(level, caller)

	now := netTime.Now()
	postID := m.store.NextPostID()
	m.store.UpsertPost(storage.NewPost(
		postID, caller, contentHash, likes, shares, level, now))

	m.report(catalog.PostCreated,
		fmt.Sprintf("post %d by %s at %s", postID, caller, now))
	return postID, nil
}

// LikePost marks the post liked by the caller, bumps the encrypted like
// tally, and folds a +1 onto the author's reputation in the same
// transition. A second like by the same identity fails and changes
// nothing.
func (m *Manager) LikePost(caller *id.ID, postID uint64) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	if _, err := m.requireRegistered(caller); err != nil {
		return err
	}
	post, ok := m.store.GetPost(postID)
	if !ok || !post.IsVisible {
		return PostNotVisibleErr
	}
	if post.HasLiked(caller) {
		return AlreadyLikedErr
	}
	author := m.mustGetUser(post.Author, "author of post")

	one, err := encint.Constant(m.eval, encint.Width32, likeReputation)
	if err != nil {
		return evalFailed(err, "likePost")
	}
	newLikes, err := encint.Add(m.eval, post.Likes, one)
	if err != nil {
		return evalFailed(err, "likePost")
	}
	newReputation, err := encint.Add(m.eval, author.Reputation, one)
	if err != nil {
		return evalFailed(err, "likePost")
	}

	m.grant(newLikes, post.Author)
	m.grant(newReputation, post.Author)

	post.MarkLiked(caller)
	post.Likes = newLikes
	m.store.UpsertPost(post)
	author.Reputation = newReputation
	m.store.UpsertUser(author)

	m.report(catalog.PostLiked,
		fmt.Sprintf("post %d by %s", postID, caller))
	m.report(catalog.ReputationUpdated,
		fmt.Sprintf("user %s", post.Author))
	return nil
}

// SharePost marks the post shared by the caller, bumps the encrypted share
// tally, and folds a +2 onto the author's reputation in the same
// transition.
func (m *Manager) SharePost(caller *id.ID, postID uint64) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	if _, err := m.requireRegistered(caller); err != nil {
		return err
	}
	post, ok := m.store.GetPost(postID)
	if !ok || !post.IsVisible {
		return PostNotVisibleErr
	}
	if post.HasShared(caller) {
		return AlreadySharedErr
	}
	author := m.mustGetUser(post.Author, "author of post")

	one, err := encint.Constant(m.eval, encint.Width32, 1)
	if err != nil {
		return evalFailed(err, "sharePost")
	}
	two, err := encint.Constant(m.eval, encint.Width32, shareReputation)
	if err != nil {
		return evalFailed(err, "sharePost")
	}
	newShares, err := encint.Add(m.eval, post.Shares, one)
	if err != nil {
		return evalFailed(err, "sharePost")
	}
	newReputation, err := encint.Add(m.eval, author.Reputation, two)
	if err != nil {
		return evalFailed(err, "sharePost")
	}

	m.grant(newShares, post.Author)
	m.grant(newReputation, post.Author)

	post.MarkShared(caller)
	post.Shares = newShares
	m.store.UpsertPost(post)
	author.Reputation = newReputation
	m.store.UpsertUser(author)

	m.report(catalog.PostShared,
		fmt.Sprintf("post %d by %s", postID, caller))
	m.report(catalog.ReputationUpdated,
		fmt.Sprintf("user %s", post.Author))
	return nil
}

// mustGetUser fetches a user the graph guarantees to exist. A miss means
// the graph is corrupted, e.g. a post whose author was never registered.
func (m *Manager) mustGetUser(uid *id.ID, what string) *storage.User {
	u, ok := m.store.GetUser(uid)
	if !ok {
		jww.FATAL.Panicf(
			"Graph corruption: %s %s has no record", what, uid)
	}
	return u
}
