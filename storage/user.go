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

	"github.com/pkg/errors"
	"gitlab.com/xx_network/primitives/id"

	"gitlab.com/elixxir/sociograph/encint"
)

const userVersion = 0

// User is the identity-keyed record of a graph participant. The three
// counters are ciphertext handles; everything else is public. Exists is
// append-only true: there is no deletion path, a user's lifecycle ends only
// with ledger teardown.
type User struct {
	ID             *id.ID
	ProfileHash    []byte
	Reputation     encint.Counter
	FollowerCount  encint.Counter
	FollowingCount encint.Counter
	IsActive       bool
	JoinDate       time.Time
	Exists         bool
}

// userDisk is the serialized form of a User.
type userDisk struct {
	ID             []byte         `json:"id"`
	ProfileHash    []byte         `json:"profileHash"`
	Reputation     encint.Counter `json:"reputation"`
	FollowerCount  encint.Counter `json:"followerCount"`
	FollowingCount encint.Counter `json:"followingCount"`
	IsActive       bool           `json:"isActive"`
	JoinDate       time.Time      `json:"joinDate"`
	Exists         bool           `json:"exists"`
}

func (u *User) marshal() ([]byte, error) {
	return json.Marshal(&userDisk{
		ID:             u.ID.Marshal(),
		ProfileHash:    u.ProfileHash,
		Reputation:     u.Reputation,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		IsActive:       u.IsActive,
		JoinDate:       u.JoinDate,
		Exists:         u.Exists,
	})
}

func unmarshalUser(data []byte) (*User, error) {
	disk := userDisk{}
	if err := json.Unmarshal(data, &disk); err != nil {
		return nil, errors.WithMessage(err, "failed to unmarshal user")
	}
	uid, err := id.Unmarshal(disk.ID)
	if err != nil {
		return nil, errors.WithMessage(err, "bad user id")
	}
	return &User{
		ID:             uid,
		ProfileHash:    disk.ProfileHash,
		Reputation:     disk.Reputation,
		FollowerCount:  disk.FollowerCount,
		FollowingCount: disk.FollowingCount,
		IsActive:       disk.IsActive,
		JoinDate:       disk.JoinDate,
		Exists:         disk.Exists,
	}, nil
}
