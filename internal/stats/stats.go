// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

// Package stats holds the per-call instrumentation counters the driver
// exposes for tests and diagnostics.
//
// These are call-scoped, single-threaded counters read directly as plain
// fields by whitebox tests, not a long-lived service's observability
// surface, so this package carries no metrics dependency.
package stats

// Counters accumulates per-call traversal statistics. The zero value is
// ready to use.
type Counters struct {
	// PacketSteps counts iterations of the packet walker's inner loop.
	PacketSteps int
	// SingleRaySteps counts individual lane steps taken by the single-ray
	// walker (summed across all lanes and all single-ray episodes).
	SingleRaySteps int
	// ModeSwitches counts transitions from packet mode into single-ray
	// mode, at either the post-pop or mid-traversal switch point.
	ModeSwitches int
	// LeafVisits counts calls into the external primitive intersector.
	LeafVisits int
}

// Reset zeroes all counters, for reuse across calls without reallocating.
func (c *Counters) Reset() { *c = Counters{} }
