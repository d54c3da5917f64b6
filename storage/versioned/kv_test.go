////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package versioned

import (
	"bytes"
	"testing"
	"time"

	"gitlab.com/elixxir/ekv"
)

// Stored objects must round-trip through Set and Get.
func TestKV_SetGet(t *testing.T) {
	kv := NewKV(ekv.MakeMemstore())

	original := &Object{
		Version:   0,
		Timestamp: time.Now(),
		Data:      []byte("not a real user"),
	}
	if err := kv.Set("user", original); err != nil {
		t.Fatalf("Set error: %+v", err)
	}

	loaded, err := kv.Get("user", 0)
	if err != nil {
		t.Fatalf("Get error: %+v", err)
	}
	if !bytes.Equal(loaded.Data, original.Data) {
		t.Errorf("Data mismatch: got %q, expected %q",
			loaded.Data, original.Data)
	}
}

// Prefixed KVs must not collide with each other or the root.
func TestKV_Prefix(t *testing.T) {
	kv := NewKV(ekv.MakeMemstore())
	users := kv.Prefix("users")
	posts := kv.Prefix("posts")

	if users.GetPrefix() == posts.GetPrefix() {
		t.Fatalf("Prefixes collide: %q", users.GetPrefix())
	}

	obj := &Object{Version: 0, Timestamp: time.Now(), Data: []byte("a")}
	if err := users.Set("1", obj); err != nil {
		t.Fatalf("Set error: %+v", err)
	}
	if _, err := posts.Get("1", 0); err == nil {
		t.Error("Get under a different prefix returned data")
	}
	if _, err := users.Get("1", 0); err != nil {
		t.Errorf("Get under the same prefix failed: %+v", err)
	}
}

func TestKV_Delete(t *testing.T) {
	kv := NewKV(ekv.MakeMemstore())

	obj := &Object{Version: 0, Timestamp: time.Now(), Data: []byte("a")}
	if err := kv.Set("k", obj); err != nil {
		t.Fatalf("Set error: %+v", err)
	}
	if err := kv.Delete("k", 0); err != nil {
		t.Fatalf("Delete error: %+v", err)
	}
	if _, err := kv.Get("k", 0); kv.Exists(err) {
		t.Error("Get after Delete still exists")
	}
}
