////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package social

import (
	"fmt"

	"gitlab.com/xx_network/primitives/id"
	"gitlab.com/xx_network/primitives/netTime"

	"gitlab.com/elixxir/sociograph/catalog"
	"gitlab.com/elixxir/sociograph/encint"
	"gitlab.com/elixxir/sociograph/storage"
)

// RegisterUser creates the caller's user record with an encrypted starting
// reputation and zeroed follower counters. Registration is once and
// forever: the record cannot be deleted and Exists never flips back.
func (m *Manager) RegisterUser(caller *id.ID, profileHash []byte) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	if u, ok := m.store.GetUser(caller); ok && u.Exists {
		return AlreadyRegisteredErr
	}

	reputation, err := encint.Constant(
		m.eval, encint.Width32, initialReputation)
	if err != nil {
		return evalFailed(err, "registerUser")
	}
	followers, err := encint.Constant(m.eval, encint.Width32, 0)
	if err != nil {
		return evalFailed(err, "registerUser")
	}
	following, err := encint.Constant(m.eval, encint.Width32, 0)
	if err != nil {
		return evalFailed(err, "registerUser")
	}

	m.grant(reputation, caller)
	m.grant(followers, caller)
	m.grant(following, caller)

	now := netTime.Now()
	m.store.UpsertUser(&storage.User{
		ID:             caller,
		ProfileHash:    profileHash,
		Reputation:     reputation,
		FollowerCount:  followers,
		FollowingCount: following,
		IsActive:       true,
		JoinDate:       now,
		Exists:         true,
	})

	m.report(catalog.UserRegistered,
		fmt.Sprintf("user %s at %s", caller, now))
	return nil
}
