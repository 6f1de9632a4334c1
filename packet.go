// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

package qbvh

import (
	"math"
	"sort"

	"github.com/rtcore/qbvh4/internal/mask"
	"github.com/rtcore/qbvh4/internal/slab"
	"github.com/rtcore/qbvh4/internal/stack"
	"github.com/rtcore/qbvh4/internal/stats"
)

// packetChild is one candidate child discovered while descending a node for
// a whole packet: its ref and the packet-min near-distance across the lanes
// that hit it.
type packetChild struct {
	ref  NodeRef
	dist float64
}

// activeCount reports how many lanes are still interested in a node pushed
// at curDist: valid, not yet terminated by an any-hit, and not already
// beaten by a closer hit recorded in TFar. Recomputed fresh on every call,
// never cached across a traversal step, so it always reflects the packet's
// current state even as earlier leaves mutate TFar/Terminated mid-walk.
func activeCount(pkt *RayPacket, curDist float64) int {
	n := 0
	for i := 0; i < mask.Lanes; i++ {
		if pkt.Valid.Test(i) && curDist < pkt.TFar[i] {
			n++
		}
	}
	return n
}

func activeLaneMask(pkt *RayPacket, curDist float64) mask.Mask4 {
	var m mask.Mask4
	for i := 0; i < mask.Lanes; i++ {
		if pkt.Valid.Test(i) && curDist < pkt.TFar[i] {
			m.Set(i)
		}
	}
	return m
}

func allTerminated(pkt *RayPacket) bool {
	for i := 0; i < mask.Lanes; i++ {
		if pkt.Valid.Test(i) && !pkt.Terminated.Test(i) {
			return false
		}
	}
	return true
}

// runPacketStatic drives the whole walk (packet mode, with single-ray
// fallback) for a static-only scene: the outer stack loop, the two mode
// switch points, and the downward descent into children.
//
// One stack-driven loop with a pop at the top; the downward-descent body is
// long enough to warrant its own function (descendStatic) rather than being
// inlined, so the Popping/Descending/Leaf states read as separate steps.
func runPacketStatic[P Intersector](scene *Scene[P], pkt *RayPacket, anyHit bool, st *stats.Counters) {
	s := stack.New[NodeRef](StackCapacity)
	s.Push(SentinelRef, math.Inf(1))
	s.Push(scene.Root, math.Inf(-1))

	for {
		e := s.Pop()
		if e.Node.IsSentinel() {
			return
		}
		cur, curDist := e.Node, e.Dist

		if activeCount(pkt, curDist) == 0 {
			continue
		}
		if activeCount(pkt, curDist) <= TSwitch {
			st.ModeSwitches++
			runSingleLanesStatic(scene, pkt, activeLaneMask(pkt, curDist), cur, curDist, anyHit, st)
			if anyHit && allTerminated(pkt) {
				return
			}
			continue
		}

		if done := descendStatic(scene, pkt, s, cur, curDist, anyHit, st); done {
			return
		}
	}
}

// descendStatic walks downward from (cur, curDist) until it reaches a leaf
// (intersects it and returns) or runs out of hit children (falls through to
// the outer pop). Returns true if the whole call is done (any-hit packet
// fully terminated).
func descendStatic[P Intersector](scene *Scene[P], pkt *RayPacket, s *stack.Stack[NodeRef], cur NodeRef, curDist float64, anyHit bool, st *stats.Counters) bool {
	for {
		st.PacketSteps++

		if cur.IsLeaf() {
			st.LeafVisits++
			leaf := scene.leaf(cur)
			active := activeLaneMask(pkt, curDist)
			if anyHit {
				hit := scene.Prim.Occluded(active, pkt, leaf)
				for i := 0; i < mask.Lanes; i++ {
					if hit.Test(i) {
						pkt.Terminated.Set(i)
						pkt.TFar[i] = math.Inf(-1)
					}
				}
				return allTerminated(pkt)
			}
			scene.Prim.Intersect(active, pkt, leaf)
			return false
		}

		if !cur.IsInternal() {
			panic("qbvh: malformed node ref for static-only driver")
		}

		n := scene.staticNode(cur)
		var cands []packetChild
		for i, child := range n.Children() {
			box := n.ChildBox(i)
			hit, tNear := slab.Test(pkt.OrgX, pkt.OrgY, pkt.OrgZ, pkt.RDirX, pkt.RDirY, pkt.RDirZ, pkt.TNear, pkt.TFar, box)

			best := math.Inf(1)
			anyLane := false
			for lane := 0; lane < mask.Lanes; lane++ {
				if pkt.Valid.Test(lane) && hit[lane] {
					anyLane = true
					if tNear[lane] < best {
						best = tNear[lane]
					}
				}
			}
			if anyLane {
				cands = append(cands, packetChild{ref: child, dist: best})
			}
		}

		if len(cands) == 0 {
			return false
		}

		sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })
		for i := len(cands) - 1; i >= 1; i-- {
			s.Push(cands[i].ref, cands[i].dist)
		}
		cur, curDist = cands[0].ref, cands[0].dist

		if SwitchDuringDown && activeCount(pkt, curDist) <= TSwitch {
			st.ModeSwitches++
			runSingleLanesStatic(scene, pkt, activeLaneMask(pkt, curDist), cur, curDist, anyHit, st)
			return anyHit && allTerminated(pkt)
		}
	}
}

// runSingleLanesStatic runs the single-ray walker (single.go) over every
// lane set in active, starting each from the same (cur, curDist): the mode
// switch hands the whole remaining subtree to each surviving lane
// independently.
func runSingleLanesStatic[P Intersector](scene *Scene[P], pkt *RayPacket, active mask.Mask4, cur NodeRef, curDist float64, anyHit bool, st *stats.Counters) {
	for _, lane := range active.LaneIndices() {
		if anyHit && pkt.Terminated.Test(lane) {
			continue
		}
		walkSingleStatic(scene, pkt, lane, cur, curDist, anyHit, st)
	}
}

// runPacketMixed, descendMixed and runSingleLanesMixed are the counterparts
// of runPacketStatic, descendStatic and runSingleLanesStatic for scenes that may contain motion-blur nodes. The packet
// walker itself does not vectorize motion-blur nodes across rays: each lane
// may carry a different ray time, so there is no single shared child box to
// test against all four lanes at once. A packet encountering a motion node
// switches to single-ray mode immediately.
func runPacketMixed[P Intersector](scene *Scene[P], pkt *RayPacket, anyHit bool, st *stats.Counters) {
	s := stack.New[NodeRef](StackCapacity)
	s.Push(SentinelRef, math.Inf(1))
	s.Push(scene.Root, math.Inf(-1))

	for {
		e := s.Pop()
		if e.Node.IsSentinel() {
			return
		}
		cur, curDist := e.Node, e.Dist

		if activeCount(pkt, curDist) == 0 {
			continue
		}
		if cur.IsInternalMB() || activeCount(pkt, curDist) <= TSwitch {
			st.ModeSwitches++
			runSingleLanesMixed(scene, pkt, activeLaneMask(pkt, curDist), cur, curDist, anyHit, st)
			if anyHit && allTerminated(pkt) {
				return
			}
			continue
		}

		if done := descendMixed(scene, pkt, s, cur, curDist, anyHit, st); done {
			return
		}
	}
}

func descendMixed[P Intersector](scene *Scene[P], pkt *RayPacket, s *stack.Stack[NodeRef], cur NodeRef, curDist float64, anyHit bool, st *stats.Counters) bool {
	for {
		st.PacketSteps++

		if cur.IsLeaf() {
			st.LeafVisits++
			leaf := scene.leaf(cur)
			active := activeLaneMask(pkt, curDist)
			if anyHit {
				hit := scene.Prim.Occluded(active, pkt, leaf)
				for i := 0; i < mask.Lanes; i++ {
					if hit.Test(i) {
						pkt.Terminated.Set(i)
						pkt.TFar[i] = math.Inf(-1)
					}
				}
				return allTerminated(pkt)
			}
			scene.Prim.Intersect(active, pkt, leaf)
			return false
		}

		if cur.IsInternalMB() {
			// A motion node needs single-ray handling (see runPacketMixed's
			// doc comment); push it back and let the outer loop dispatch it.
			s.Push(cur, curDist)
			return false
		}

		if !cur.IsInternal() {
			panic("qbvh: malformed node ref")
		}

		n := scene.staticNode(cur)
		var cands []packetChild
		for i, child := range n.Children() {
			box := n.ChildBox(i)
			hit, tNear := slab.Test(pkt.OrgX, pkt.OrgY, pkt.OrgZ, pkt.RDirX, pkt.RDirY, pkt.RDirZ, pkt.TNear, pkt.TFar, box)

			best := math.Inf(1)
			anyLane := false
			for lane := 0; lane < mask.Lanes; lane++ {
				if pkt.Valid.Test(lane) && hit[lane] {
					anyLane = true
					if tNear[lane] < best {
						best = tNear[lane]
					}
				}
			}
			if anyLane {
				cands = append(cands, packetChild{ref: child, dist: best})
			}
		}

		if len(cands) == 0 {
			return false
		}

		sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })
		for i := len(cands) - 1; i >= 1; i-- {
			s.Push(cands[i].ref, cands[i].dist)
		}
		cur, curDist = cands[0].ref, cands[0].dist

		if cur.IsInternalMB() {
			s.Push(cur, curDist)
			return false
		}

		if SwitchDuringDown && activeCount(pkt, curDist) <= TSwitch {
			st.ModeSwitches++
			runSingleLanesMixed(scene, pkt, activeLaneMask(pkt, curDist), cur, curDist, anyHit, st)
			return anyHit && allTerminated(pkt)
		}
	}
}

func runSingleLanesMixed[P Intersector](scene *Scene[P], pkt *RayPacket, active mask.Mask4, cur NodeRef, curDist float64, anyHit bool, st *stats.Counters) {
	for _, lane := range active.LaneIndices() {
		if anyHit && pkt.Terminated.Test(lane) {
			continue
		}
		walkSingleMixed(scene, pkt, lane, cur, curDist, anyHit, st)
	}
}
