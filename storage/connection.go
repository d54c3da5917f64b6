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

const connectionVersion = 0

// Connection is the unordered relationship record created on first follow
// between two identities. There is at most one connection per pair, ever:
// unfollow deactivates it and a later re-follow does not resurrect it or
// mint a new id.
type Connection struct {
	ID        uint64
	User1     *id.ID
	User2     *id.ID
	Strength  encint.Counter
	Timestamp time.Time
	IsActive  bool
}

type connectionDisk struct {
	ID        uint64         `json:"id"`
	User1     []byte         `json:"user1"`
	User2     []byte         `json:"user2"`
	Strength  encint.Counter `json:"strength"`
	Timestamp time.Time      `json:"timestamp"`
	IsActive  bool           `json:"isActive"`
}

func (c *Connection) marshal() ([]byte, error) {
	return json.Marshal(&connectionDisk{
		ID:        c.ID,
		User1:     c.User1.Marshal(),
		User2:     c.User2.Marshal(),
		Strength:  c.Strength,
		Timestamp: c.Timestamp,
		IsActive:  c.IsActive,
	})
}

func unmarshalConnection(data []byte) (*Connection, error) {
	disk := connectionDisk{}
	if err := json.Unmarshal(data, &disk); err != nil {
		return nil, errors.WithMessage(err,
			"failed to unmarshal connection")
	}
	u1, err := id.Unmarshal(disk.User1)
	if err != nil {
		return nil, errors.WithMessage(err, "bad connection user1")
	}
	u2, err := id.Unmarshal(disk.User2)
	if err != nil {
		return nil, errors.WithMessage(err, "bad connection user2")
	}
	return &Connection{
		ID:        disk.ID,
		User1:     u1,
		User2:     u2,
		Strength:  disk.Strength,
		Timestamp: disk.Timestamp,
		IsActive:  disk.IsActive,
	}, nil
}
