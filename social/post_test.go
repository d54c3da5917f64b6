////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package social

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/elixxir/sociograph/catalog"
	"gitlab.com/elixxir/sociograph/permissions"
)

func TestManager_CreatePost(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")

	postID, err := tb.manager.CreatePost(alice, []byte("content hash"), 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), postID)

	p := tb.post(t, postID)
	require.True(t, p.IsVisible)
	require.Equal(t, uint64(0), tb.mustReveal(t, p.Likes, alice))
	require.Equal(t, uint64(0), tb.mustReveal(t, p.Shares, alice))
	// The privacy tier itself is encrypted but readable by author and
	// process.
	require.Equal(t, uint64(1), tb.mustReveal(t, p.PrivacyLevel, alice))
	require.Equal(t, uint64(1),
		tb.mustReveal(t, p.PrivacyLevel, permissions.Process))

	require.Equal(t, 1, tb.events.count(catalog.PostCreated))
}

func TestManager_CreatePost_InvalidPrivacyLevel(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")

	_, err := tb.manager.CreatePost(alice, []byte("content"), 3)
	require.ErrorIs(t, err, InvalidPrivacyLevelErr)
	require.Equal(t, 0, tb.manager.GetUserPostCount(alice))
}

// Post ids keep increasing across failed and retried creations.
func TestManager_CreatePost_MonotonicIDs(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")

	first, err := tb.manager.CreatePost(alice, []byte("a"), 0)
	require.NoError(t, err)

	tb.eval.FailNext(errEvalDown)
	_, err = tb.manager.CreatePost(alice, []byte("b"), 0)
	require.Error(t, err)

	second, err := tb.manager.CreatePost(alice, []byte("b"), 0)
	require.NoError(t, err)
	require.Greater(t, second, first)
}

func TestManager_LikePost(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")
	bob := tb.register(t, "bob")

	postID, err := tb.manager.CreatePost(alice, []byte("content"), 0)
	require.NoError(t, err)

	require.NoError(t, tb.manager.LikePost(bob, postID))

	p := tb.post(t, postID)
	require.True(t, p.HasLiked(bob))
	require.Equal(t, uint64(1), tb.mustReveal(t, p.Likes, alice))
	// The author's reputation moved +1 in the same transition.
	require.Equal(t, uint64(51),
		tb.mustReveal(t, tb.user(t, alice).Reputation, alice))
	// The liker cannot read the tally; only author and process can.
	_, err = tb.reveal(p.Likes, bob)
	require.Error(t, err)

	require.Equal(t, 1, tb.events.count(catalog.PostLiked))
	require.Equal(t, 1, tb.events.count(catalog.ReputationUpdated))
}

func TestManager_LikePost_Idempotence(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")
	bob := tb.register(t, "bob")

	postID, err := tb.manager.CreatePost(alice, []byte("content"), 0)
	require.NoError(t, err)
	require.NoError(t, tb.manager.LikePost(bob, postID))

	likesBefore := tb.post(t, postID).Likes

	err = tb.manager.LikePost(bob, postID)
	require.ErrorIs(t, err, AlreadyLikedErr)

	// The handle is unchanged, and so is the value behind it.
	p := tb.post(t, postID)
	require.Equal(t, likesBefore, p.Likes)
	require.Equal(t, uint64(1), tb.mustReveal(t, p.Likes, alice))
	require.Equal(t, uint64(51),
		tb.mustReveal(t, tb.user(t, alice).Reputation, alice))
	require.Equal(t, 1, tb.events.count(catalog.PostLiked))
}

func TestManager_LikePost_MissingPost(t *testing.T) {
	tb := newTestBed(t)
	bob := tb.register(t, "bob")

	require.ErrorIs(t, tb.manager.LikePost(bob, 404), PostNotVisibleErr)
}

// An evaluation failure mid-like must leave the post, the author, and the
// guard set untouched.
func TestManager_LikePost_EvalFailureRollsBack(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")
	bob := tb.register(t, "bob")

	postID, err := tb.manager.CreatePost(alice, []byte("content"), 0)
	require.NoError(t, err)
	likesBefore := tb.post(t, postID).Likes
	repBefore := tb.user(t, alice).Reputation

	tb.eval.FailNext(errEvalDown)
	require.Error(t, tb.manager.LikePost(bob, postID))

	p := tb.post(t, postID)
	require.False(t, p.HasLiked(bob))
	require.Equal(t, likesBefore, p.Likes)
	require.Equal(t, repBefore, tb.user(t, alice).Reputation)
	require.Equal(t, 0, tb.events.count(catalog.PostLiked))

	// The capability recovered; the retry goes through.
	require.NoError(t, tb.manager.LikePost(bob, postID))
	require.Equal(t, uint64(1),
		tb.mustReveal(t, tb.post(t, postID).Likes, alice))
}

func TestManager_SharePost(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")
	bob := tb.register(t, "bob")

	postID, err := tb.manager.CreatePost(alice, []byte("content"), 0)
	require.NoError(t, err)

	require.NoError(t, tb.manager.SharePost(bob, postID))

	p := tb.post(t, postID)
	require.True(t, p.HasShared(bob))
	require.False(t, p.HasLiked(bob))
	require.Equal(t, uint64(1), tb.mustReveal(t, p.Shares, alice))
	// Shares are worth +2 reputation.
	require.Equal(t, uint64(52),
		tb.mustReveal(t, tb.user(t, alice).Reputation, alice))

	require.ErrorIs(t, tb.manager.SharePost(bob, postID), AlreadySharedErr)
	require.Equal(t, uint64(1),
		tb.mustReveal(t, tb.post(t, postID).Shares, alice))
	require.Equal(t, 1, tb.events.count(catalog.PostShared))
}

// Authors may like their own posts; only duplicates are rejected.
func TestManager_LikeOwnPost(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")

	postID, err := tb.manager.CreatePost(alice, []byte("content"), 0)
	require.NoError(t, err)

	require.NoError(t, tb.manager.LikePost(alice, postID))
	require.Equal(t, uint64(51),
		tb.mustReveal(t, tb.user(t, alice).Reputation, alice))
}

func TestManager_GetPostInfo(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")

	postID, err := tb.manager.CreatePost(alice, []byte("content hash"), 2)
	require.NoError(t, err)

	info, err := tb.manager.GetPostInfo(postID)
	require.NoError(t, err)
	require.Equal(t, postID, info.PostID)
	require.True(t, info.Author.Cmp(alice))
	require.Equal(t, []byte("content hash"), info.ContentHash)
	require.True(t, info.IsVisible)

	_, err = tb.manager.GetPostInfo(404)
	require.ErrorIs(t, err, PostNotFoundErr)
}
