// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

// Package mask provides a fixed 4-lane bitset used throughout qbvh for ray
// packet validity/active/termination masks.
//
// It is a thin, fixed-width wrapper around [github.com/bits-and-blooms/bitset],
// used here at width 4 (one bit per ray lane).
package mask

import "github.com/bits-and-blooms/bitset"

// Lanes is the fixed packet width: four rays per packet, four children per
// BVH node.
const Lanes = 4

// Mask4 is a 4-bit lane mask. The zero value is the all-clear mask.
type Mask4 struct {
	bits *bitset.BitSet
}

func empty() *bitset.BitSet { return bitset.New(Lanes) }

// NewMask4 builds a Mask4 from the low 4 bits of v.
func NewMask4(v uint8) Mask4 {
	b := empty()
	for i := uint(0); i < Lanes; i++ {
		if v&(1<<i) != 0 {
			b.Set(i)
		}
	}
	return Mask4{bits: b}
}

// Full returns a mask with all four lanes set.
func Full() Mask4 { return NewMask4(0b1111) }

func (m *Mask4) ensure() *bitset.BitSet {
	if m.bits == nil {
		m.bits = empty()
	}
	return m.bits
}

// Test reports whether lane i is set.
func (m Mask4) Test(i int) bool {
	if m.bits == nil {
		return false
	}
	return m.bits.Test(uint(i))
}

// Set marks lane i active.
func (m *Mask4) Set(i int) { m.ensure().Set(uint(i)) }

// Clear marks lane i inactive.
func (m *Mask4) Clear(i int) { m.ensure().Clear(uint(i)) }

// None reports whether no lane is set.
func (m Mask4) None() bool { return m.bits == nil || m.bits.None() }

// Any reports whether at least one lane is set.
func (m Mask4) Any() bool { return !m.None() }

// Count returns the number of set lanes (the packet's active lane count).
func (m Mask4) Count() int {
	if m.bits == nil {
		return 0
	}
	return int(m.bits.Count())
}

// Or returns the lane-wise union of m and other.
func (m Mask4) Or(other Mask4) Mask4 {
	r := Mask4{bits: m.ensure().Clone()}
	r.bits.InPlaceUnion(other.ensure())
	return r
}

// And returns the lane-wise intersection of m and other.
func (m Mask4) And(other Mask4) Mask4 {
	r := Mask4{bits: m.ensure().Clone()}
	r.bits.InPlaceIntersection(other.ensure())
	return r
}

// AndNot clears every lane in m that is set in other.
func (m Mask4) AndNot(other Mask4) Mask4 {
	r := Mask4{bits: m.ensure().Clone()}
	r.bits.InPlaceDifference(other.ensure())
	return r
}

// LaneIndices returns the set lane indices in ascending order.
func (m Mask4) LaneIndices() []int {
	out := make([]int, 0, Lanes)
	for i := 0; i < Lanes; i++ {
		if m.Test(i) {
			out = append(out, i)
		}
	}
	return out
}
