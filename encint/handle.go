////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package encint defines opaque handles to encrypted unsigned integers and
// the evaluation capability that performs arithmetic on them. The package
// never computes on plaintext; every operation is a request to an Evaluator
// that returns a fresh handle.
package encint

import (
	"encoding/base64"

	"github.com/pkg/errors"
)

// HandleLen is the length, in bytes, of a ciphertext handle.
const HandleLen = 32

// Handle is an opaque reference to a ciphertext held by the evaluation
// capability. The engine stores and compares handles but can never derive
// the plaintext from one.
type Handle [HandleLen]byte

// Bytes returns a copy of the byte data of the Handle.
func (h Handle) Bytes() []byte {
	return h[:]
}

// String returns a base64 encoding of the Handle. This function satisfies
// the fmt.Stringer interface.
func (h Handle) String() string {
	return base64.StdEncoding.EncodeToString(h[:])
}

// UnmarshalHandle deserializes byte data into a Handle.
func UnmarshalHandle(b []byte) (Handle, error) {
	var h Handle
	if len(b) != HandleLen {
		return h, errors.Errorf(
			"failed to unmarshal handle: length is %d, expected %d",
			len(b), HandleLen)
	}
	copy(h[:], b)
	return h, nil
}
