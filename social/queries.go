////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package social

import (
	"time"

	"gitlab.com/xx_network/primitives/id"

	"gitlab.com/elixxir/sociograph/permissions"
	"gitlab.com/elixxir/sociograph/storage"
)

// PostInfo is the public projection of a post. Encrypted handles are never
// part of it; reveals of the tallies go through the separate authorized
// decryption path.
type PostInfo struct {
	PostID      uint64
	Author      *id.ID
	ContentHash []byte
	Timestamp   time.Time
	IsVisible   bool
}

// GetUserPostCount returns how many posts the user has made. Public.
func (m *Manager) GetUserPostCount(user *id.ID) int {
	return len(m.store.UserPostIDs(user))
}

// GetUserPosts returns up to limit of the user's post ids, most recent
// first. Public. A non-positive limit returns nothing.
func (m *Manager) GetUserPosts(user *id.ID, limit int) []uint64 {
	ids := m.store.UserPostIDs(user)
	if limit <= 0 {
		return nil
	}

	// The index is in creation order; walk it backwards.
	out := make([]uint64, 0, limit)
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, ids[i])
	}
	return out
}

// GetUserMessageCount returns how many private messages user has received.
// Only the user themselves or the owning process may ask.
func (m *Manager) GetUserMessageCount(caller, user *id.ID) (int, error) {
	if !caller.Cmp(user) && !caller.Cmp(permissions.Process) {
		return 0, NotAuthorizedErr
	}
	return len(m.store.UserMessageIDs(user)), nil
}

// GetPostInfo returns the public fields of a post. Public; an invisible
// post still resolves, with IsVisible false.
func (m *Manager) GetPostInfo(postID uint64) (PostInfo, error) {
	post, ok := m.store.GetPost(postID)
	if !ok {
		return PostInfo{}, PostNotFoundErr
	}
	return PostInfo{
		PostID:      post.ID,
		Author:      post.Author,
		ContentHash: post.ContentHash,
		Timestamp:   post.Timestamp,
		IsVisible:   post.IsVisible,
	}, nil
}

// IsUserFollowing reports whether the directional edge a → b exists.
// Public.
func (m *Manager) IsUserFollowing(a, b *id.ID) bool {
	return m.store.IsFollowing(a, b)
}

// GetNetworkStats returns the public aggregate counts of the graph.
func (m *Manager) GetNetworkStats() storage.NetworkStats {
	return m.store.Stats()
}
