// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

// A Table maps interned strings to values: the globals table, instance
// fields, and the heap's intern set are all Tables. It is open-addressed
// with linear probing over a power-of-two bucket array. Keys compare by
// identity; FindString is the single probe that looks at string bytes,
// and exists so interning can find a match before an object for the
// contents exists.
//
// Deleted entries leave a tombstone (nil key, true value) so probe
// chains stay intact; genuinely empty slots are (nil key, nil value).
// count includes tombstones, which keeps the load check honest about
// how full probe chains really are.
type Table struct {
	count   int
	entries []entry
}

type entry struct {
	key   *String
	value Value
}

const tableMaxLoad = 0.75

// findEntry returns the slot key lives in, or the slot an insert of key
// should use: the first tombstone passed, if any, otherwise the empty
// slot that ended the probe. len(entries) must be a power of two.
func findEntry(entries []entry, key *String) *entry {
	index := key.Hash & uint32(len(entries)-1)
	var tombstone *entry
	for {
		e := &entries[index]
		if e.key == nil {
			if e.value.IsNil() {
				// Empty entry.
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			// A tombstone; remember the first one we pass.
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		index = (index + 1) & uint32(len(entries)-1)
	}
}

// Get looks up key and returns a copy of its value.
func (t *Table) Get(key *String) (Value, bool) {
	if t.count == 0 {
		return Value{}, false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return Value{}, false
	}
	return e.value, true
}

// Set maps key to value and reports whether key was absent. Reusing a
// tombstone does not grow count: the tombstone already paid for its
// slot in the load factor.
func (t *Table) Set(key *String, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}
	e := findEntry(t.entries, key)
	isNewKey := e.key == nil
	if isNewKey && e.value.IsNil() {
		t.count++
	}
	e.key = key
	e.value = value
	return isNewKey
}

// Delete removes key, leaving a tombstone, and reports whether the key
// was present.
func (t *Table) Delete(key *String) bool {
	if t.count == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = Bool(true)
	return true
}

// FindString returns the interned string equal to s, or nil. This is
// the only probe that compares contents; the precomputed hash and
// length cut almost every candidate before the byte comparison.
func (t *Table) FindString(s string, hash uint32) *String {
	if t.count == 0 {
		return nil
	}
	index := hash & uint32(len(t.entries)-1)
	for {
		e := &t.entries[index]
		if e.key == nil {
			// Stop at a genuinely empty, non-tombstone slot.
			if e.value.IsNil() {
				return nil
			}
		} else if len(e.key.Str) == len(s) && e.key.Hash == hash && e.key.Str == s {
			return e.key
		}
		index = (index + 1) & uint32(len(t.entries)-1)
	}
}

// AddAll copies every live entry of t into dst.
func (t *Table) AddAll(dst *Table) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			dst.Set(e.key, e.value)
		}
	}
}

// Len returns the number of live (non-tombstone) entries.
func (t *Table) Len() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].key != nil {
			n++
		}
	}
	return n
}

// RemoveWhite deletes every entry whose key is unmarked. The garbage
// collector calls it on the intern set between marking and sweeping, so
// strings about to be freed do not linger as dangling keys.
func (t *Table) RemoveWhite() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil && !e.key.marked {
			t.Delete(e.key)
		}
	}
}

// Mark marks every key and value in the table as a GC root.
func (t *Table) Mark(h *Heap) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			h.MarkObject(e.key)
		}
		h.MarkValue(e.value)
	}
}

// adjustCapacity rebuilds the bucket array at the given capacity,
// re-inserting live entries and discarding tombstones.
func (t *Table) adjustCapacity(capacity int) {
	entries := make([]entry, capacity)
	t.count = 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.key == nil {
			continue
		}
		dest := findEntry(entries, e.key)
		dest.key = e.key
		dest.value = e.value
		t.count++
	}
	t.entries = entries
}

// growCapacity doubles a bucket-array capacity, starting at 8.
func growCapacity(c int) int {
	if c < 8 {
		return 8
	}
	return c * 2
}
