// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

package mask

import "testing"

func TestNewMask4(t *testing.T) {
	m := NewMask4(0b0101)
	if !m.Test(0) || m.Test(1) || !m.Test(2) || m.Test(3) {
		t.Fatalf("unexpected bits: %+v", m.LaneIndices())
	}
	if got := m.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}
}

func TestFull(t *testing.T) {
	m := Full()
	for i := 0; i < Lanes; i++ {
		if !m.Test(i) {
			t.Fatalf("lane %d not set in Full()", i)
		}
	}
	if m.Count() != Lanes {
		t.Fatalf("Count() = %d, want %d", m.Count(), Lanes)
	}
}

func TestZeroValue(t *testing.T) {
	var m Mask4
	if m.Any() {
		t.Fatalf("zero value Mask4 should be all-clear")
	}
	if !m.None() {
		t.Fatalf("zero value Mask4.None() should be true")
	}
}

func TestSetClear(t *testing.T) {
	var m Mask4
	m.Set(1)
	m.Set(3)
	if m.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", m.Count())
	}
	m.Clear(1)
	if m.Test(1) {
		t.Fatalf("lane 1 should be cleared")
	}
	if !m.Test(3) {
		t.Fatalf("lane 3 should remain set")
	}
}

func TestOrAndAndNot(t *testing.T) {
	a := NewMask4(0b0011)
	b := NewMask4(0b0110)

	if or := a.Or(b); or.Count() != 3 {
		t.Fatalf("Or count = %d, want 3", or.Count())
	}
	if and := a.And(b); and.Count() != 1 || !and.Test(1) {
		t.Fatalf("And = %+v, want only lane 1 set", and.LaneIndices())
	}
	if diff := a.AndNot(b); diff.Count() != 1 || !diff.Test(0) {
		t.Fatalf("AndNot = %+v, want only lane 0 set", diff.LaneIndices())
	}
	// a, b unchanged by the non-mutating combinators.
	if a.Count() != 2 || b.Count() != 2 {
		t.Fatalf("operands mutated: a=%+v b=%+v", a.LaneIndices(), b.LaneIndices())
	}
}

func TestLaneIndices(t *testing.T) {
	m := NewMask4(0b1001)
	idx := m.LaneIndices()
	if len(idx) != 2 || idx[0] != 0 || idx[1] != 3 {
		t.Fatalf("LaneIndices() = %v, want [0 3]", idx)
	}
}
