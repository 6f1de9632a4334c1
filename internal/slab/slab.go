// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

// Package slab implements the ray/AABB slab test: the 4-lane box test used
// by both the packet walker and, one lane at a time, the single-ray walker.
//
// It is deliberately isolated from node/stack/driver concerns, exposing
// only scalar arithmetic over explicit lane arrays.
package slab

import "math"

// LargeFinite stands in for a signed infinity that slab-test arithmetic can
// still multiply and compare without producing NaN. See RecipSafe.
const LargeFinite = 1e34

// RecipSafe returns 1/v, except for v == 0 it returns a signed LargeFinite
// value instead of +/-Inf, preserving the sign of v (copysign(+0) is
// treated as positive). The slab-test min/max chain must never see a NaN
// or an actual infinity, which a literal 1/0 would produce.
func RecipSafe(v float64) float64 {
	if v == 0 {
		return math.Copysign(LargeFinite, v)
	}
	return 1 / v
}

// Box holds one child's six packed AABB scalars. For a motion-blur child,
// ResolveMotionBox turns a base Box and a velocity Box into the Box at a
// given time (base+time*delta); TestMotion and MotionNode.ResolvedBox in
// node.go both go through it.
type Box struct {
	LowerX, LowerY, LowerZ float64
	UpperX, UpperY, UpperZ float64
}

// Lanes4 holds one axis's four-lane values, e.g. origin.x for all four rays.
type Lanes4 = [4]float64

// Test runs the slab test for one child against all four lanes at once. All
// four lanes test the *same* child box; only the ray data (org, rdir, tnear,
// tfar) varies per lane. rdir must already be RecipSafe'd.
//
// Returns the hit mask (tNear[i] <= tFar[i]) and the per-lane tNear.
func Test(orgX, orgY, orgZ, rdirX, rdirY, rdirZ, tnear, tfar Lanes4, box Box) (hit [4]bool, tNear Lanes4) {
	for i := 0; i < 4; i++ {
		h, n := TestOne(orgX[i], orgY[i], orgZ[i], rdirX[i], rdirY[i], rdirZ[i], tnear[i], tfar[i], box)
		hit[i], tNear[i] = h, n
	}
	return hit, tNear
}

// TestOne runs the slab test for a single lane against a single box; Test
// calls it once per lane, and TestAgainstFour (used by the single-ray
// walker) once per child.
func TestOne(orgX, orgY, orgZ, rdirX, rdirY, rdirZ, tnear, tfar float64, b Box) (hit bool, tNear float64) {
	tMinX := (b.LowerX - orgX) * rdirX
	tMaxX := (b.UpperX - orgX) * rdirX
	tMinY := (b.LowerY - orgY) * rdirY
	tMaxY := (b.UpperY - orgY) * rdirY
	tMinZ := (b.LowerZ - orgZ) * rdirZ
	tMaxZ := (b.UpperZ - orgZ) * rdirZ

	minX, maxX := math.Min(tMinX, tMaxX), math.Max(tMinX, tMaxX)
	minY, maxY := math.Min(tMinY, tMaxY), math.Max(tMinY, tMaxY)
	minZ, maxZ := math.Min(tMinZ, tMaxZ), math.Max(tMinZ, tMaxZ)

	near := math.Max(tnear, math.Max(minX, math.Max(minY, minZ)))
	far := math.Min(tfar, math.Min(maxX, math.Min(maxY, maxZ)))

	return near <= far, near
}

// TestAgainstFour runs the slab test for a single ray against up to four
// different child boxes at once — lanes index *children*, not rays. This is
// the layout the single-ray walker exploits to vectorize across a node's
// children instead of across a packet's rays.
func TestAgainstFour(orgX, orgY, orgZ, rdirX, rdirY, rdirZ, tnear, tfar float64, lowerX, lowerY, lowerZ, upperX, upperY, upperZ Lanes4) (hit [4]bool, tNear Lanes4) {
	for i := 0; i < 4; i++ {
		b := Box{
			LowerX: lowerX[i], LowerY: lowerY[i], LowerZ: lowerZ[i],
			UpperX: upperX[i], UpperY: upperY[i], UpperZ: upperZ[i],
		}
		hit[i], tNear[i] = TestOne(orgX, orgY, orgZ, rdirX, rdirY, rdirZ, tnear, tfar, b)
	}
	return hit, tNear
}

// ResolveMotionBox reconstructs a child's effective box at time t from its
// base bounds and per-axis linear velocity: coord(t) = base + t*delta.
func ResolveMotionBox(base, delta Box, t float64) Box {
	return Box{
		LowerX: base.LowerX + t*delta.LowerX,
		LowerY: base.LowerY + t*delta.LowerY,
		LowerZ: base.LowerZ + t*delta.LowerZ,
		UpperX: base.UpperX + t*delta.UpperX,
		UpperY: base.UpperY + t*delta.UpperY,
		UpperZ: base.UpperZ + t*delta.UpperZ,
	}
}

// ResolveMotionBoxPerLane resolves a motion-blur child's box independently
// per lane, since each lane may carry a different ray time.
func ResolveMotionBoxPerLane(base, delta Box, time Lanes4) (boxes [4]Box) {
	for i := 0; i < 4; i++ {
		boxes[i] = ResolveMotionBox(base, delta, time[i])
	}
	return boxes
}

// TestMotion runs the slab test for one motion-blur child against all four
// lanes, resolving each lane's box at its own ray time first.
func TestMotion(orgX, orgY, orgZ, rdirX, rdirY, rdirZ, tnear, tfar, time Lanes4, base, delta Box) (hit [4]bool, tNear Lanes4) {
	boxes := ResolveMotionBoxPerLane(base, delta, time)
	for i := 0; i < 4; i++ {
		h, n := TestOne(orgX[i], orgY[i], orgZ[i], rdirX[i], rdirY[i], rdirZ[i], tnear[i], tfar[i], boxes[i])
		hit[i], tNear[i] = h, n
	}
	return hit, tNear
}
