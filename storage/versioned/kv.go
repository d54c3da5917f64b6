////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package versioned wraps an ekv.KeyValue with key prefixing and versioned
// records so each subsystem of the ledger owns a disjoint keyspace.
package versioned

import (
	"fmt"

	"gitlab.com/elixxir/ekv"
)

const PrefixSeparator = "/"

type root struct {
	data ekv.KeyValue
}

// KV stores versioned data under a prefix chain.
type KV struct {
	r      *root
	prefix string
}

// NewKV creates a versioned key/value store backed by anything implementing
// ekv.KeyValue.
func NewKV(data ekv.KeyValue) *KV {
	return &KV{r: &root{data: data}}
}

// Get retrieves the object stored under key at the given schema version.
func (v *KV) Get(key string, version uint64) (*Object, error) {
	key = v.makeKey(key, version)
	result := Object{}
	if err := v.r.data.Get(key, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Set upserts an object into storage. The caller is responsible for the
// object's Version; it becomes part of the stored key.
func (v *KV) Set(key string, object *Object) error {
	key = v.makeKey(key, object.Version)
	return v.r.data.Set(key, object)
}

// Delete removes the given key from the data store.
func (v *KV) Delete(key string, version uint64) error {
	return v.r.data.Delete(v.makeKey(key, version))
}

// Prefix returns a new KV that scopes all keys under the additional prefix.
// The underlying store is shared.
func (v *KV) Prefix(prefix string) *KV {
	return &KV{
		r:      v.r,
		prefix: v.prefix + prefix + PrefixSeparator,
	}
}

// GetPrefix returns the accumulated prefix of the KV.
func (v *KV) GetPrefix() string {
	return v.prefix
}

// GetFullKey returns the key with all prefixes applied, as stored.
func (v *KV) GetFullKey(key string, version uint64) string {
	return v.makeKey(key, version)
}

func (v *KV) makeKey(key string, version uint64) string {
	return fmt.Sprintf("%s%s_%d", v.prefix, key, version)
}

// Exists returns false if the error indicates the element does not exist.
func (v *KV) Exists(err error) bool {
	return ekv.Exists(err)
}
