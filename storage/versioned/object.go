////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package versioned

import (
	"encoding/json"
	"fmt"
	"time"
)

// Object is the record stored for every key in the ledger. It carries a
// schema version and the time of the write alongside the serialized data.
type Object struct {
	// Used to determine the schema of Data
	Version uint64

	// Set when this object is written
	Timestamp time.Time

	// Serialized version of the original object
	Data []byte
}

// Unmarshal deserializes an Object from a byte slice. It is what makes
// Objects storable in a KeyValue. All fields are exported with simple
// types, so json works fine.
func (v *Object) Unmarshal(data []byte) error {
	return json.Unmarshal(data, v)
}

// Marshal serializes an Object into a byte slice for the KeyValue.
func (v *Object) Marshal() []byte {
	d, err := json.Marshal(v)
	// Not being able to marshal this simple object means something is
	// really wrong
	if err != nil {
		panic(fmt.Sprintf("Could not marshal: %+v", v))
	}
	return d
}
