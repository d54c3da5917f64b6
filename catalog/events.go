////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package catalog names the domain events emitted by the interaction
// engine. External indexers and UIs key off these strings, so they are
// append-only.
package catalog

// SocialGraph is the event category shared by every engine event.
const SocialGraph = "SocialGraph"

const (
	// UserRegistered - a new identity joined the graph.
	UserRegistered = "UserRegistered"

	// PostCreated - a registered user published a post.
	PostCreated = "PostCreated"

	// PostLiked - a user liked a visible post for the first time.
	PostLiked = "PostLiked"

	// PostShared - a user shared a visible post for the first time.
	PostShared = "PostShared"

	// UserFollowed - a directional follow edge was set.
	UserFollowed = "UserFollowed"

	// UserUnfollowed - a directional follow edge was cleared.
	UserUnfollowed = "UserUnfollowed"

	// ConnectionEstablished - the first follow between a pair minted a
	// connection record.
	ConnectionEstablished = "ConnectionEstablished"

	// MessageSent - a private message was stored for its recipient.
	MessageSent = "MessageSent"

	// MessageRead - a recipient marked a message as read.
	MessageRead = "MessageRead"

	// ReputationUpdated - a reputation counter was re-derived. Emitted
	// alongside the triggering like/share/follow event.
	ReputationUpdated = "ReputationUpdated"
)
