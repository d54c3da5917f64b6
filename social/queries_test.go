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

	"gitlab.com/elixxir/sociograph/storage"
)

func TestManager_GetUserPosts_Pagination(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")

	var ids []uint64
	for i := 0; i < 5; i++ {
		postID, err := tb.manager.CreatePost(alice, []byte{byte(i)}, 0)
		require.NoError(t, err)
		ids = append(ids, postID)
	}

	require.Equal(t, 5, tb.manager.GetUserPostCount(alice))

	// Most recent first, truncated at the limit.
	require.Equal(t, []uint64{ids[4], ids[3], ids[2]},
		tb.manager.GetUserPosts(alice, 3))
	require.Equal(t, []uint64{ids[4], ids[3], ids[2], ids[1], ids[0]},
		tb.manager.GetUserPosts(alice, 10))
	require.Nil(t, tb.manager.GetUserPosts(alice, 0))
}

func TestManager_GetUserPosts_NoPosts(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")

	require.Equal(t, 0, tb.manager.GetUserPostCount(alice))
	require.Empty(t, tb.manager.GetUserPosts(alice, 10))
}

func TestManager_GetNetworkStats(t *testing.T) {
	tb := newTestBed(t)
	alice := tb.register(t, "alice")
	bob := tb.register(t, "bob")

	_, err := tb.manager.CreatePost(alice, []byte("content"), 0)
	require.NoError(t, err)
	require.NoError(t, tb.manager.FollowUser(bob, alice))
	_, err = tb.manager.SendPrivateMessage(bob, alice, []byte("blob"))
	require.NoError(t, err)

	require.Equal(t, storage.NetworkStats{
		Users:       2,
		Posts:       1,
		Connections: 1,
		Messages:    1,
		FollowEdges: 1,
	}, tb.manager.GetNetworkStats())
}
