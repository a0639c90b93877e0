// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"fmt"
	"testing"
)

// key makes a string object without going through a heap, so table
// behavior can be tested in isolation.
func key(s string) *String {
	return &String{Str: s, Hash: hashString(s)}
}

func TestTableSetGet(t *testing.T) {
	var tab Table
	k := key("a")
	if !tab.Set(k, Number(1)) {
		t.Error("first Set returned existing key")
	}
	if tab.Set(k, Number(2)) {
		t.Error("second Set returned new key")
	}
	v, ok := tab.Get(k)
	if !ok || !v.Equals(Number(2)) {
		t.Errorf("Get = (%v, %v), want (2, true)", v, ok)
	}
	if _, ok := tab.Get(key("a")); ok {
		t.Error("Get found a key with equal contents but different identity")
	}
}

func TestTableDelete(t *testing.T) {
	var tab Table
	k := key("a")
	if tab.Delete(k) {
		t.Error("Delete on empty table reported success")
	}
	tab.Set(k, Number(1))
	if !tab.Delete(k) {
		t.Error("Delete missed a present key")
	}
	if _, ok := tab.Get(k); ok {
		t.Error("Get found a deleted key")
	}
	if tab.Delete(k) {
		t.Error("second Delete reported success")
	}
}

// Deleting and re-adding must probe through tombstones without
// corrupting chains or inflating the load count.
func TestTableTombstones(t *testing.T) {
	var tab Table
	keys := make([]*String, 32)
	for i := range keys {
		keys[i] = key(fmt.Sprintf("k%d", i))
		tab.Set(keys[i], Number(float64(i)))
	}
	for i := 0; i < len(keys); i += 2 {
		tab.Delete(keys[i])
	}
	for i := 1; i < len(keys); i += 2 {
		v, ok := tab.Get(keys[i])
		if !ok || !v.Equals(Number(float64(i))) {
			t.Fatalf("key %d lost after deletes", i)
		}
	}
	// Reinsert into tombstoned slots.
	for i := 0; i < len(keys); i += 2 {
		tab.Set(keys[i], Number(float64(-i)))
	}
	for i := 0; i < len(keys); i += 2 {
		v, ok := tab.Get(keys[i])
		if !ok || !v.Equals(Number(float64(-i))) {
			t.Fatalf("reinserted key %d wrong: %v %v", i, v, ok)
		}
	}
	if got := tab.Len(); got != len(keys) {
		t.Errorf("Len = %d, want %d", got, len(keys))
	}
	if tab.count != len(keys) {
		t.Errorf("load count = %d after reusing tombstones, want %d", tab.count, len(keys))
	}
}

func TestTableGrowth(t *testing.T) {
	var tab Table
	const n = 1000
	keys := make([]*String, n)
	for i := range keys {
		keys[i] = key(fmt.Sprintf("key-%d", i))
		tab.Set(keys[i], Number(float64(i)))
	}
	if len(tab.entries)&(len(tab.entries)-1) != 0 {
		t.Errorf("capacity %d is not a power of two", len(tab.entries))
	}
	for i, k := range keys {
		v, ok := tab.Get(k)
		if !ok || !v.Equals(Number(float64(i))) {
			t.Fatalf("key %d lost during growth", i)
		}
	}
}

func TestTableFindString(t *testing.T) {
	var tab Table
	k := key("needle")
	tab.Set(k, Nil())
	if got := tab.FindString("needle", hashString("needle")); got != k {
		t.Errorf("FindString returned %v, want the inserted key", got)
	}
	if got := tab.FindString("missing", hashString("missing")); got != nil {
		t.Errorf("FindString found %q for a missing string", got.Str)
	}
	// A deleted key must not be findable, but the probe has to carry on
	// past its tombstone.
	tab.Delete(k)
	if got := tab.FindString("needle", hashString("needle")); got != nil {
		t.Error("FindString found a tombstoned key")
	}
}

func TestTableAddAll(t *testing.T) {
	var src, dst Table
	ka, kb := key("a"), key("b")
	src.Set(ka, Number(1))
	src.Set(kb, Number(2))
	src.Delete(kb)
	src.AddAll(&dst)
	if v, ok := dst.Get(ka); !ok || !v.Equals(Number(1)) {
		t.Error("AddAll dropped a live entry")
	}
	if _, ok := dst.Get(kb); ok {
		t.Error("AddAll copied a tombstone")
	}
}

func TestTableRemoveWhite(t *testing.T) {
	var tab Table
	marked, white := key("marked"), key("white")
	marked.marked = true
	tab.Set(marked, Nil())
	tab.Set(white, Nil())
	tab.RemoveWhite()
	if _, ok := tab.Get(marked); !ok {
		t.Error("RemoveWhite deleted a marked key")
	}
	if _, ok := tab.Get(white); ok {
		t.Error("RemoveWhite kept an unmarked key")
	}
}
