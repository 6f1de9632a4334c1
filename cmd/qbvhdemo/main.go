// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

// Command qbvhdemo builds a tiny two-level static scene, fires a
// four-lane ray packet at it in both closest-hit and any-hit mode, and
// logs what each lane found along with the traversal counters.
package main

import (
	"log"
	"math"
	"time"

	"github.com/rtcore/qbvh4"
	"github.com/rtcore/qbvh4/internal/mask"
	"github.com/rtcore/qbvh4/internal/slab"
)

// sphere is the only primitive this demo knows how to intersect.
type sphere struct {
	cx, cy, cz, radius float64
}

// spherePrims implements qbvh.Intersector over a flat sphere list, indexed
// via LeafRef.PrimOffset/PrimCount exactly as the core expects: it never
// looks past what the leaf says is there.
type spherePrims struct {
	spheres []sphere
}

func (p spherePrims) Intersect(valid mask.Mask4, pkt *qbvh.RayPacket, leaf qbvh.LeafRef) {
	for lane := 0; lane < mask.Lanes; lane++ {
		if !valid.Test(lane) {
			continue
		}
		for i := uint32(0); i < leaf.PrimCount; i++ {
			s := p.spheres[leaf.PrimOffset+i]
			if t, ok := hitSphere(pkt, lane, s); ok && t < pkt.TFar[lane] {
				pkt.TFar[lane] = t
			}
		}
	}
}

func (p spherePrims) Occluded(valid mask.Mask4, pkt *qbvh.RayPacket, leaf qbvh.LeafRef) mask.Mask4 {
	var hit mask.Mask4
	for lane := 0; lane < mask.Lanes; lane++ {
		if !valid.Test(lane) {
			continue
		}
		for i := uint32(0); i < leaf.PrimCount; i++ {
			s := p.spheres[leaf.PrimOffset+i]
			if _, ok := hitSphere(pkt, lane, s); ok {
				hit.Set(lane)
				break
			}
		}
	}
	return hit
}

func hitSphere(pkt *qbvh.RayPacket, lane int, s sphere) (float64, bool) {
	ox, oy, oz := pkt.OrgX[lane]-s.cx, pkt.OrgY[lane]-s.cy, pkt.OrgZ[lane]-s.cz
	dx, dy, dz := pkt.DirX[lane], pkt.DirY[lane], pkt.DirZ[lane]

	a := dx*dx + dy*dy + dz*dz
	b := 2 * (ox*dx + oy*dy + oz*dz)
	c := ox*ox + oy*oy + oz*oz - s.radius*s.radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	t := (-b - math.Sqrt(disc)) / (2 * a)
	if t < pkt.TNear[lane] || t > pkt.TFar[lane] {
		return 0, false
	}
	return t, true
}

func buildDemoScene() *qbvh.Scene[spherePrims] {
	prims := spherePrims{spheres: []sphere{
		{cx: 0, cy: 0, cz: 0, radius: 1},
		{cx: 3, cy: 0, cz: 0, radius: 1},
	}}

	leaves := []qbvh.LeafRef{
		{PrimOffset: 0, PrimCount: 1},
		{PrimOffset: 1, PrimCount: 1},
	}

	root := qbvh.StaticNode{
		ChildRefs: [4]qbvh.NodeRef{qbvh.MakeLeafRef(0), qbvh.MakeLeafRef(1), qbvh.EmptyRef, qbvh.EmptyRef},
		LowerX:    [4]float64{-1, 2, 0, 0},
		LowerY:    [4]float64{-1, -1, 0, 0},
		LowerZ:    [4]float64{-1, -1, 0, 0},
		UpperX:    [4]float64{1, 4, 0, 0},
		UpperY:    [4]float64{1, 1, 0, 0},
		UpperZ:    [4]float64{1, 1, 0, 0},
	}

	return &qbvh.Scene[spherePrims]{
		Static: []qbvh.StaticNode{root},
		Leaves: leaves,
		Root:   qbvh.MakeStaticRef(0),
		Prim:   prims,
	}
}

func demoPacket() *qbvh.RayPacket {
	pkt := &qbvh.RayPacket{}
	pkt.OrgX = slab.Lanes4{-5, -5, -5, -5}
	pkt.OrgY = slab.Lanes4{0, 0, 2, 0}
	pkt.OrgZ = slab.Lanes4{0, 0, 0, 0}
	pkt.DirX = slab.Lanes4{1, 1, 1, 1}
	pkt.DirY = slab.Lanes4{0, 0, 0, 0}
	pkt.DirZ = slab.Lanes4{0, 0, 0, 0}
	pkt.TNear = slab.Lanes4{0, 0, 0, 0}
	pkt.TFar = slab.Lanes4{100, 100, 100, 100}
	return pkt
}

func main() {
	log.SetFlags(log.Lmicroseconds)

	scene := buildDemoScene()

	var driver qbvh.Driver[spherePrims]
	pkt := demoPacket()

	ts := time.Now()
	driver.Intersect(mask.Full(), scene, pkt)
	log.Printf("closest-hit packet in %v", time.Since(ts))
	for lane := 0; lane < mask.Lanes; lane++ {
		log.Printf("lane %d: tFar=%.3f", lane, pkt.TFar[lane])
	}
	st := driver.Stats()
	log.Printf("packetSteps=%d singleRaySteps=%d modeSwitches=%d leafVisits=%d",
		st.PacketSteps, st.SingleRaySteps, st.ModeSwitches, st.LeafVisits)

	occPkt := demoPacket()
	occluded := driver.Occluded(mask.Full(), scene, occPkt)
	log.Printf("any-hit occluded mask: %v", occluded.LaneIndices())
}
