////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package social

import "github.com/pkg/errors"

// Precondition failures. Each is surfaced to the caller verbatim and means
// no state changed. Invariant violations are not errors; they panic.
var (
	AlreadyRegisteredErr = errors.New(
		"caller is already registered")
	NotRegisteredErr = errors.New(
		"caller is not a registered user")
	InvalidPrivacyLevelErr = errors.New(
		"privacy level must be 0 (public), 1 (followers) or 2 (private)")
	PostNotVisibleErr = errors.New(
		"post does not exist or is not visible")
	AlreadyLikedErr = errors.New(
		"caller has already liked this post")
	AlreadySharedErr = errors.New(
		"caller has already shared this post")
	SelfFollowErr = errors.New(
		"users cannot follow themselves")
	AlreadyFollowingErr = errors.New(
		"caller already follows the target")
	TargetNotRegisteredErr = errors.New(
		"follow target is not a registered user")
	NotFollowingErr = errors.New(
		"caller does not follow the target")
	SelfMessageErr = errors.New(
		"users cannot message themselves")
	RecipientNotRegisteredErr = errors.New(
		"message recipient is not a registered user")
	NotMessageOwnerErr = errors.New(
		"caller is not the recipient of this message")
	NotAuthorizedErr = errors.New(
		"caller is not authorized for this query")
	PostNotFoundErr = errors.New(
		"post does not exist")
)

// evalFailed wraps an evaluation-capability error. The enclosing transition
// was aborted with no graph mutation applied, so the caller may retry.
func evalFailed(err error, op string) error {
	return errors.WithMessagef(err,
		"evaluation failed during %s, transition aborted", op)
}
