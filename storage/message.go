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
)

const messageVersion = 0

// PrivateMessage is a stored direct message. The content arrives already
// encrypted and is carried as an opaque blob; no arithmetic is ever
// performed on it.
type PrivateMessage struct {
	ID               uint64
	Sender           *id.ID
	Recipient        *id.ID
	EncryptedContent []byte
	Timestamp        time.Time
	IsRead           bool
}

type messageDisk struct {
	ID               uint64    `json:"id"`
	Sender           []byte    `json:"sender"`
	Recipient        []byte    `json:"recipient"`
	EncryptedContent []byte    `json:"encryptedContent"`
	Timestamp        time.Time `json:"timestamp"`
	IsRead           bool      `json:"isRead"`
}

func (m *PrivateMessage) marshal() ([]byte, error) {
	return json.Marshal(&messageDisk{
		ID:               m.ID,
		Sender:           m.Sender.Marshal(),
		Recipient:        m.Recipient.Marshal(),
		EncryptedContent: m.EncryptedContent,
		Timestamp:        m.Timestamp,
		IsRead:           m.IsRead,
	})
}

func unmarshalMessage(data []byte) (*PrivateMessage, error) {
	disk := messageDisk{}
	if err := json.Unmarshal(data, &disk); err != nil {
		return nil, errors.WithMessage(err,
			"failed to unmarshal private message")
	}
	sender, err := id.Unmarshal(disk.Sender)
	if err != nil {
		return nil, errors.WithMessage(err, "bad message sender")
	}
	recipient, err := id.Unmarshal(disk.Recipient)
	if err != nil {
		return nil, errors.WithMessage(err, "bad message recipient")
	}
	return &PrivateMessage{
		ID:               disk.ID,
		Sender:           sender,
		Recipient:        recipient,
		EncryptedContent: disk.EncryptedContent,
		Timestamp:        disk.Timestamp,
		IsRead:           disk.IsRead,
	}, nil
}
