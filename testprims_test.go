// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

package qbvh

import (
	"github.com/rtcore/qbvh4/internal/mask"
	"github.com/rtcore/qbvh4/internal/slab"
)

// testPrims is a minimal Intersector over a flat list of axis-aligned
// boxes, used by this package's own tests in place of a real geometry
// library: each "primitive" is just the box a leaf's slab test already
// proved the ray's bounding interval overlaps, so intersecting it again
// here is just another slab test restricted to [TNear, TFar].
type testPrims struct {
	boxes []slab.Box
}

func (p testPrims) Intersect(valid mask.Mask4, pkt *RayPacket, leaf LeafRef) {
	for lane := 0; lane < mask.Lanes; lane++ {
		if !valid.Test(lane) {
			continue
		}
		for i := uint32(0); i < leaf.PrimCount; i++ {
			b := p.boxes[leaf.PrimOffset+i]
			hit, near := slab.TestOne(
				pkt.OrgX[lane], pkt.OrgY[lane], pkt.OrgZ[lane],
				pkt.RDirX[lane], pkt.RDirY[lane], pkt.RDirZ[lane],
				pkt.TNear[lane], pkt.TFar[lane], b,
			)
			if hit && near < pkt.TFar[lane] {
				pkt.TFar[lane] = near
			}
		}
	}
}

func (p testPrims) Occluded(valid mask.Mask4, pkt *RayPacket, leaf LeafRef) mask.Mask4 {
	var out mask.Mask4
	for lane := 0; lane < mask.Lanes; lane++ {
		if !valid.Test(lane) {
			continue
		}
		for i := uint32(0); i < leaf.PrimCount; i++ {
			b := p.boxes[leaf.PrimOffset+i]
			if hit, _ := slab.TestOne(
				pkt.OrgX[lane], pkt.OrgY[lane], pkt.OrgZ[lane],
				pkt.RDirX[lane], pkt.RDirY[lane], pkt.RDirZ[lane],
				pkt.TNear[lane], pkt.TFar[lane], b,
			); hit {
				out.Set(lane)
				break
			}
		}
	}
	return out
}

// cubeAt returns a unit-ish box spanning [lo, hi] on x, wide open on y/z, so
// tests can place hittable geometry purely by its x position along a ray
// fired down the x axis.
func cubeAt(lo, hi float64) slab.Box {
	return slab.Box{
		LowerX: lo, LowerY: -1, LowerZ: -1,
		UpperX: hi, UpperY: 1, UpperZ: 1,
	}
}

// rayPacketAlongX builds a packet of Lanes rays, all starting at x=org,
// heading down +x, with the given per-lane y offset (0 means all rays
// share the same line; a non-zero offset lets a test make one lane miss a
// box the others hit).
func rayPacketAlongX(org float64, yOffsets [4]float64) *RayPacket {
	pkt := &RayPacket{}
	for i := 0; i < 4; i++ {
		pkt.OrgX[i] = org
		pkt.OrgY[i] = yOffsets[i]
		pkt.DirX[i] = 1
		pkt.TNear[i] = 0
		pkt.TFar[i] = 1e6
	}
	return pkt
}

// buildTwoLeafScene places two unit boxes along +x at distinct positions,
// each its own leaf directly under the root.
func buildTwoLeafScene() *Scene[testPrims] {
	boxes := []slab.Box{cubeAt(0, 1), cubeAt(5, 6)}
	root := StaticNode{
		ChildRefs: [4]NodeRef{MakeLeafRef(0), MakeLeafRef(1), EmptyRef, EmptyRef},
	}
	for i, b := range boxes {
		root.LowerX[i], root.LowerY[i], root.LowerZ[i] = b.LowerX, b.LowerY, b.LowerZ
		root.UpperX[i], root.UpperY[i], root.UpperZ[i] = b.UpperX, b.UpperY, b.UpperZ
	}
	return &Scene[testPrims]{
		Static: []StaticNode{root},
		Leaves: []LeafRef{{PrimOffset: 0, PrimCount: 1}, {PrimOffset: 1, PrimCount: 1}},
		Root:   MakeStaticRef(0),
		Prim:   testPrims{boxes: boxes},
	}
}

// buildOverlappingLeavesScene places two leaves whose node-level bounding
// boxes overlap (so neither can be ruled out by the other's box alone) but
// whose actual primitives sit at different depths inside those boxes: leaf
// A's bounding box is nearer (so it is descended first) but its primitive
// lies farther inside than leaf B's. A closest-hit walk must still visit
// leaf B after leaf A, since B's box near-distance is less than the
// distance A's primitive actually reported; an any-hit walk stops at A,
// since any primitive hit already satisfies it.
func buildOverlappingLeavesScene() *Scene[testPrims] {
	boxA := cubeAt(0, 2)   // box near = 10
	boxB := cubeAt(0.5, 2) // box near = 10.5
	primA := cubeAt(0.9, 1.0)
	primB := cubeAt(0.6, 0.7)

	root := StaticNode{ChildRefs: [4]NodeRef{MakeLeafRef(0), MakeLeafRef(1), EmptyRef, EmptyRef}}
	for i, b := range []slab.Box{boxA, boxB} {
		root.LowerX[i], root.LowerY[i], root.LowerZ[i] = b.LowerX, b.LowerY, b.LowerZ
		root.UpperX[i], root.UpperY[i], root.UpperZ[i] = b.UpperX, b.UpperY, b.UpperZ
	}
	return &Scene[testPrims]{
		Static: []StaticNode{root},
		Leaves: []LeafRef{{PrimOffset: 0, PrimCount: 1}, {PrimOffset: 1, PrimCount: 1}},
		Root:   MakeStaticRef(0),
		Prim:   testPrims{boxes: []slab.Box{primA, primB}},
	}
}

// buildEmptyScene has a root with no children at all.
func buildEmptyScene() *Scene[testPrims] {
	return &Scene[testPrims]{
		Static: []StaticNode{{ChildRefs: [4]NodeRef{EmptyRef, EmptyRef, EmptyRef, EmptyRef}}},
		Root:   MakeStaticRef(0),
		Prim:   testPrims{},
	}
}

// buildChainScene builds a skewed chain depth levels deep: level i's near
// child continues the chain (or, at the last level, reaches the real hit
// leaf), and its far child is a "decoy" leaf that the ray also hits but
// that must be pushed onto the stack rather than descended into
// immediately. This is what makes the walk's stack depth grow linearly
// with depth, rather than staying flat.
func buildChainScene(depth int) *Scene[testPrims] {
	boxes := []slab.Box{cubeAt(float64(depth)+2, float64(depth)+3)}

	statics := make([]StaticNode, depth)
	leaves := make([]LeafRef, depth+1)
	leaves[0] = LeafRef{PrimOffset: 0, PrimCount: 1}

	for i := 0; i < depth; i++ {
		near := cubeAt(float64(i), float64(i)+0.5)
		far := cubeAt(float64(i)+0.6, float64(i)+0.9)

		var nearRef NodeRef
		if i == depth-1 {
			nearRef = MakeLeafRef(0)
		} else {
			nearRef = MakeStaticRef(uint32(i + 1))
		}
		decoyIdx := uint32(i + 1)
		leaves[decoyIdx] = LeafRef{PrimCount: 0}

		n := StaticNode{ChildRefs: [4]NodeRef{nearRef, MakeLeafRef(decoyIdx), EmptyRef, EmptyRef}}
		n.LowerX[0], n.LowerY[0], n.LowerZ[0] = near.LowerX, near.LowerY, near.LowerZ
		n.UpperX[0], n.UpperY[0], n.UpperZ[0] = near.UpperX, near.UpperY, near.UpperZ
		n.LowerX[1], n.LowerY[1], n.LowerZ[1] = far.LowerX, far.LowerY, far.LowerZ
		n.UpperX[1], n.UpperY[1], n.UpperZ[1] = far.UpperX, far.UpperY, far.UpperZ
		statics[i] = n
	}

	return &Scene[testPrims]{
		Static: statics,
		Leaves: leaves,
		Root:   MakeStaticRef(0),
		Prim:   testPrims{boxes: boxes},
	}
}
