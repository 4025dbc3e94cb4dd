// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package problem

import (
	"encoding/binary"
	"math/bits"
	"strconv"
	"strings"
)

// Fact is a ground proposition, identified by its index in the problem's
// fact table.
type Fact int

// FactSet is a fixed-capacity bitset of facts.
//
// Description:
//
//	Each fact is one bit in a uint64 word array. Membership, union,
//	difference and subset tests are O(words). Two sets built for the same
//	fact table always have the same word count, so equality and Key() are
//	structural.
//
//	FactSet values share their backing array when copied by assignment.
//	Use Clone before mutating a set that has been handed out.
//
// Thread Safety: Safe for concurrent reads. Not safe for concurrent writes.
type FactSet struct {
	words []uint64
}

// NewFactSet creates an empty set able to hold facts [0, capacity).
func NewFactSet(capacity int) FactSet {
	if capacity <= 0 {
		return FactSet{}
	}
	return FactSet{words: make([]uint64, (capacity+63)/64)}
}

// FactSetOf creates a set of the given capacity containing facts.
// Facts outside [0, capacity) are ignored.
func FactSetOf(capacity int, facts ...Fact) FactSet {
	s := NewFactSet(capacity)
	for _, f := range facts {
		s.Add(f)
	}
	return s
}

// Capacity returns the number of facts the set can address.
func (s FactSet) Capacity() int {
	return len(s.words) * 64
}

// Has reports whether f is in the set.
func (s FactSet) Has(f Fact) bool {
	w := int(f) / 64
	if f < 0 || w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<(uint(f)%64)) != 0
}

// Add inserts f. Out of range facts are ignored.
func (s FactSet) Add(f Fact) {
	w := int(f) / 64
	if f < 0 || w >= len(s.words) {
		return
	}
	s.words[w] |= 1 << (uint(f) % 64)
}

// Remove deletes f. Out of range facts are ignored.
func (s FactSet) Remove(f Fact) {
	w := int(f) / 64
	if f < 0 || w >= len(s.words) {
		return
	}
	s.words[w] &^= 1 << (uint(f) % 64)
}

// Clone returns an independent copy.
func (s FactSet) Clone() FactSet {
	if s.words == nil {
		return FactSet{}
	}
	words := make([]uint64, len(s.words))
	copy(words, s.words)
	return FactSet{words: words}
}

// Union adds every fact of o to s in place.
func (s FactSet) Union(o FactSet) {
	n := min(len(s.words), len(o.words))
	for i := 0; i < n; i++ {
		s.words[i] |= o.words[i]
	}
}

// Difference removes every fact of o from s in place.
func (s FactSet) Difference(o FactSet) {
	n := min(len(s.words), len(o.words))
	for i := 0; i < n; i++ {
		s.words[i] &^= o.words[i]
	}
}

// ContainsAll reports whether every fact of o is in s.
func (s FactSet) ContainsAll(o FactSet) bool {
	for i, w := range o.words {
		if w == 0 {
			continue
		}
		if i >= len(s.words) || s.words[i]&w != w {
			return false
		}
	}
	return true
}

// Intersects reports whether s and o share at least one fact.
func (s FactSet) Intersects(o FactSet) bool {
	n := min(len(s.words), len(o.words))
	for i := 0; i < n; i++ {
		if s.words[i]&o.words[i] != 0 {
			return true
		}
	}
	return false
}

// Count returns the number of facts in the set.
func (s FactSet) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether the set has no facts.
func (s FactSet) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Equal reports structural equality. Trailing zero words are ignored so
// sets of different capacity compare by content.
func (s FactSet) Equal(o FactSet) bool {
	long, short := s.words, o.words
	if len(short) > len(long) {
		long, short = short, long
	}
	for i, w := range short {
		if long[i] != w {
			return false
		}
	}
	for _, w := range long[len(short):] {
		if w != 0 {
			return false
		}
	}
	return true
}

// Facts returns the members in ascending order.
func (s FactSet) Facts() []Fact {
	out := make([]Fact, 0, s.Count())
	for i, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, Fact(i*64+b))
			w &= w - 1
		}
	}
	return out
}

// Key returns a string usable as a map key. Two sets of the same capacity
// have equal keys iff they are Equal.
func (s FactSet) Key() string {
	buf := make([]byte, 8*len(s.words))
	for i, w := range s.words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return string(buf)
}

// String renders the set as {i, j, ...}.
func (s FactSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range s.Facts() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(f)))
	}
	sb.WriteByte('}')
	return sb.String()
}
