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
	"gitlab.com/xx_network/primitives/id"

	"gitlab.com/elixxir/sociograph/catalog"
	"gitlab.com/elixxir/sociograph/permissions"
)

func TestManager_RegisterUser(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")

	u := tb.user(t, alice)
	require.True(t, u.Exists)
	require.True(t, u.IsActive)

	// Both the process and the user can read the seeded counters.
	require.Equal(t, uint64(50),
		tb.mustReveal(t, u.Reputation, permissions.Process))
	require.Equal(t, uint64(50), tb.mustReveal(t, u.Reputation, alice))
	require.Equal(t, uint64(0),
		tb.mustReveal(t, u.FollowerCount, alice))
	require.Equal(t, uint64(0),
		tb.mustReveal(t, u.FollowingCount, alice))

	// Nobody else can.
	carol := id.NewIdFromString("carol", id.User, t)
	_, err := tb.reveal(u.Reputation, carol)
	require.Error(t, err)

	require.Equal(t, 1, tb.events.count(catalog.UserRegistered))
}

func TestManager_RegisterUser_Twice(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")

	err := tb.manager.RegisterUser(alice, []byte("second profile"))
	require.ErrorIs(t, err, AlreadyRegisteredErr)
	require.Equal(t, 1, tb.events.count(catalog.UserRegistered))
}

// Every mutating operation except RegisterUser is gated on registration.
func TestManager_RegistrationGate(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")
	postID, err := tb.manager.CreatePost(alice, []byte("content"), 0)
	require.NoError(t, err)

	ghost := id.NewIdFromString("ghost", id.User, t)

	_, err = tb.manager.CreatePost(ghost, []byte("content"), 0)
	require.ErrorIs(t, err, NotRegisteredErr)
	require.ErrorIs(t, tb.manager.LikePost(ghost, postID), NotRegisteredErr)
	require.ErrorIs(t, tb.manager.SharePost(ghost, postID), NotRegisteredErr)
	require.ErrorIs(t, tb.manager.FollowUser(ghost, alice), NotRegisteredErr)
	require.ErrorIs(t, tb.manager.UnfollowUser(ghost, alice), NotRegisteredErr)
	_, err = tb.manager.SendPrivateMessage(ghost, alice, []byte("blob"))
	require.ErrorIs(t, err, NotRegisteredErr)
	require.ErrorIs(t,
		tb.manager.MarkMessageAsRead(ghost, 1), NotRegisteredErr)

	// Nothing leaked into the graph.
	stats := tb.manager.GetNetworkStats()
	require.Equal(t, 1, stats.Users)
	require.Equal(t, 1, stats.Posts)
	require.Equal(t, 0, stats.Messages)
}

// A failed registration retried after an evaluation error leaves exactly
// one user.
func TestManager_RegisterUser_EvalFailure(t *testing.T) {
	tb := newTestBed(t)
	bob := id.NewIdFromString("bob", id.User, t)

	tb.eval.FailNext(errEvalDown)
	err := tb.manager.RegisterUser(bob, []byte("profile"))
	require.Error(t, err)
	_, ok := tb.store.GetUser(bob)
	require.False(t, ok)
	require.Equal(t, 0, tb.events.count(catalog.UserRegistered))

	require.NoError(t, tb.manager.RegisterUser(bob, []byte("profile")))
	require.Equal(t, 1, tb.manager.GetNetworkStats().Users)
}
