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

// SendPrivateMessage stores an already-encrypted blob for the recipient
// and returns the message id. The engine never looks inside the content.
// If the pair has an active connection, its encrypted strength is bumped by
// one in the same transition.
func (m *Manager) SendPrivateMessage(caller, recipient *id.ID,
	encryptedContent []byte) (uint64, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	if _, err := m.requireRegistered(caller); err != nil {
		return 0, err
	}
	if caller.Cmp(recipient) {
		return 0, SelfMessageErr
	}
	if u, ok := m.store.GetUser(recipient); !ok || !u.Exists {
		return 0, RecipientNotRegisteredErr
	}

	var connection *storage.Connection
	var newStrength encint.Counter
	if connectionID, ok := m.store.ConnectionID(caller, recipient); ok {
		c, found := m.store.GetConnection(connectionID)
		if found && c.IsActive {
			one, err := encint.Constant(m.eval, encint.Width8, 1)
			if err != nil {
				return 0, evalFailed(err, "sendPrivateMessage")
			}
			newStrength, err = encint.Add(m.eval, c.Strength, one)
			if err != nil {
				return 0, evalFailed(err, "sendPrivateMessage")
			}
			connection = c
		}
	}

	if connection != nil {
		m.grant(newStrength, connection.User1, connection.User2)
		connection.Strength = newStrength
		m.store.UpsertConnection(connection)
	}

	now := netTime.Now()
	messageID := m.store.NextMessageID()
	m.store.AddMessage(&storage.PrivateMessage{
		ID:               messageID,
		Sender:           caller,
		Recipient:        recipient,
		EncryptedContent: encryptedContent,
		Timestamp:        now,
		IsRead:           false,
	})

	m.report(catalog.MessageSent,
		fmt.Sprintf("message %d from %s to %s", messageID, caller,
			recipient))
	return messageID, nil
}

// MarkMessageAsRead flips the read flag on a message. Only the recipient
// may do so; everyone else, including the sender, is rejected without
// learning whether the message exists.
func (m *Manager) MarkMessageAsRead(caller *id.ID, messageID uint64) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	if _, err := m.requireRegistered(caller); err != nil {
		return err
	}
	message, ok := m.store.GetMessage(messageID)
	if !ok || !message.Recipient.Cmp(caller) {
		return NotMessageOwnerErr
	}

	message.IsRead = true
	m.store.UpsertMessage(message)

	m.report(catalog.MessageRead,
		fmt.Sprintf("message %d by %s", messageID, caller))
	return nil
}
