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

// FollowUser sets the directional follow edge caller → target, bumps both
// encrypted follow counters, and folds a +1 onto the target's reputation.
// The first follow ever between the pair also mints a connection with an
// encrypted starting strength readable by both parties. A connection
// deactivated by a past unfollow is left alone: it is neither resurrected
// nor replaced.
func (m *Manager) FollowUser(caller, target *id.ID) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	follower, err := m.requireRegistered(caller)
	if err != nil {
		return err
	}
	if caller.Cmp(target) {
		return SelfFollowErr
	}
	followee, ok := m.store.GetUser(target)
	if !ok || !followee.Exists {
		return TargetNotRegisteredErr
	}
	if m.store.IsFollowing(caller, target) {
		return AlreadyFollowingErr
	}

	one, err := encint.Constant(m.eval, encint.Width32, followReputation)
	if err != nil {
		return evalFailed(err, "followUser")
	}
	newFollowing, err := encint.Add(m.eval, follower.FollowingCount, one)
	if err != nil {
		return evalFailed(err, "followUser")
	}
	newFollowers, err := encint.Add(m.eval, followee.FollowerCount, one)
	if err != nil {
		return evalFailed(err, "followUser")
	}
	newReputation, err := encint.Add(m.eval, followee.Reputation, one)
	if err != nil {
		return evalFailed(err, "followUser")
	}

	// The connection strength is only derived when the pair has never
	// been connected, so its evaluation sits with the others, before any
	// commit.
	_, connected := m.store.ConnectionID(caller, target)
	var strength encint.Counter
	if !connected {
		strength, err = encint.Constant(
			m.eval, encint.Width8, initialStrength)
		if err != nil {
			return evalFailed(err, "followUser")
		}
	}

	m.grant(newFollowing, caller)
	m.grant(newFollowers, target)
	m.grant(newReputation, target)

	now := netTime.Now()
	if !connected {
		m.grant(strength, caller, target)
		connectionID := m.store.NextConnectionID()
		m.store.UpsertConnection(&storage.Connection{
			ID:        connectionID,
			User1:     caller,
			User2:     target,
			Strength:  strength,
			Timestamp: now,
			IsActive:  true,
		})
		m.report(catalog.ConnectionEstablished,
			fmt.Sprintf("connection %d between %s and %s at %s",
				connectionID, caller, target, now))
	}

	m.store.SetFollow(caller, target)
	follower.FollowingCount = newFollowing
	m.store.UpsertUser(follower)
	followee.FollowerCount = newFollowers
	followee.Reputation = newReputation
	m.store.UpsertUser(followee)

	m.report(catalog.UserFollowed,
		fmt.Sprintf("%s follows %s", caller, target))
	m.report(catalog.ReputationUpdated, fmt.Sprintf("user %s", target))
	return nil
}

// UnfollowUser clears the follow edge caller → target and walks both
// encrypted follow counters back down. The public edge boolean is the sole
// legality check for the decrement; the counters themselves cannot be
// range-checked. An existing connection for the pair is deactivated, not
// deleted.
func (m *Manager) UnfollowUser(caller, target *id.ID) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	follower, err := m.requireRegistered(caller)
	if err != nil {
		return err
	}
	if !m.store.IsFollowing(caller, target) {
		return NotFollowingErr
	}
	followee := m.mustGetUser(target, "follow target")

	one, err := encint.Constant(m.eval, encint.Width32, 1)
	if err != nil {
		return evalFailed(err, "unfollowUser")
	}
	newFollowing, err := encint.Sub(m.eval, follower.FollowingCount, one)
	if err != nil {
		return evalFailed(err, "unfollowUser")
	}
	newFollowers, err := encint.Sub(m.eval, followee.FollowerCount, one)
	if err != nil {
		return evalFailed(err, "unfollowUser")
	}

	m.grant(newFollowing, caller)
	m.grant(newFollowers, target)

	m.store.ClearFollow(caller, target)
	follower.FollowingCount = newFollowing
	m.store.UpsertUser(follower)
	followee.FollowerCount = newFollowers
	m.store.UpsertUser(followee)

	if connectionID, ok := m.store.ConnectionID(caller, target); ok {
		connection, found := m.store.GetConnection(connectionID)
		if !found {
			jww.FATAL.Panicf("Graph corruption: connection %d is "+
				"indexed for %s and %s but has no record",
				connectionID, caller, target)
		}
		connection.IsActive = false
		m.store.UpsertConnection(connection)
	}

	m.report(catalog.UserUnfollowed,
		fmt.Sprintf("%s unfollows %s", caller, target))
	return nil
}
