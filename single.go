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

// laneChild is one candidate child discovered while descending a node for a
// single lane: its ref and the near-distance the slab test returned for it.
type laneChild struct {
	ref  NodeRef
	dist float64
}

func laneMask(lane int) mask.Mask4 {
	var m mask.Mask4
	m.Set(lane)
	return m
}

// descendOrder sorts cands in place by ascending near-distance, leaving the
// nearest at cands[0]. Ties keep their original (dense-left, i.e. lower slot index)
// relative order, which is as good a tie-break as any since a tie means the
// two children are geometrically equidistant for this ray.
func descendOrder(cands []laneChild) {
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })
}

// walkSingleStatic runs the single-ray walker for one lane of pkt over a
// static-only scene, starting at (start, startDist). anyHit selects
// occluded-mode semantics (return as soon as any leaf reports a hit, after
// setting the lane's Terminated bit and its TFar to -Inf; TFar is not
// restored afterwards).
//
// An explicit array stack backs the walk: pop into the loop variable,
// continue. A malformed node graph panics rather than returning an error,
// since it is a BVH-builder bug, not a caller-supplied condition.
func walkSingleStatic[P Intersector](scene *Scene[P], pkt *RayPacket, lane int, start NodeRef, startDist float64, anyHit bool, st *stats.Counters) {
	s := stack.New[NodeRef](StackCapacity)
	s.Push(SentinelRef, math.Inf(1))

	cur, curDist := start, startDist
	lm := laneMask(lane)

	for {
		if cur.IsSentinel() {
			return
		}
		if pkt.TFar[lane] <= curDist {
			e := s.Pop()
			cur, curDist = e.Node, e.Dist
			continue
		}

		if cur.IsLeaf() {
			st.LeafVisits++
			leaf := scene.leaf(cur)
			if anyHit {
				if hit := scene.Prim.Occluded(lm, pkt, leaf); hit.Test(lane) {
					pkt.Terminated.Set(lane)
					pkt.TFar[lane] = math.Inf(-1)
					return
				}
			} else {
				scene.Prim.Intersect(lm, pkt, leaf)
			}
			e := s.Pop()
			cur, curDist = e.Node, e.Dist
			continue
		}

		if !cur.IsInternal() {
			panic("qbvh: malformed node ref for static-only walker")
		}

		st.SingleRaySteps++
		n := scene.staticNode(cur)
		hit, tNear := slab.TestAgainstFour(
			pkt.OrgX[lane], pkt.OrgY[lane], pkt.OrgZ[lane],
			pkt.RDirX[lane], pkt.RDirY[lane], pkt.RDirZ[lane],
			pkt.TNear[lane], pkt.TFar[lane],
			n.LowerX, n.LowerY, n.LowerZ, n.UpperX, n.UpperY, n.UpperZ,
		)

		var cands []laneChild
		for i, child := range n.Children() {
			if hit[i] {
				cands = append(cands, laneChild{ref: child, dist: tNear[i]})
			}
		}

		if len(cands) == 0 {
			e := s.Pop()
			cur, curDist = e.Node, e.Dist
			continue
		}

		descendOrder(cands)
		for i := len(cands) - 1; i >= 1; i-- {
			s.Push(cands[i].ref, cands[i].dist)
		}
		cur, curDist = cands[0].ref, cands[0].dist
	}
}

// walkSingleMixed is walkSingleStatic's counterpart for scenes that may
// contain motion-blur internal nodes, resolving each motion node's box at
// the lane's own ray time before testing.
func walkSingleMixed[P Intersector](scene *Scene[P], pkt *RayPacket, lane int, start NodeRef, startDist float64, anyHit bool, st *stats.Counters) {
	s := stack.New[NodeRef](StackCapacity)
	s.Push(SentinelRef, math.Inf(1))

	cur, curDist := start, startDist
	lm := laneMask(lane)
	t := pkt.Time[lane]

	for {
		if cur.IsSentinel() {
			return
		}
		if pkt.TFar[lane] <= curDist {
			e := s.Pop()
			cur, curDist = e.Node, e.Dist
			continue
		}

		if cur.IsLeaf() {
			st.LeafVisits++
			leaf := scene.leaf(cur)
			if anyHit {
				if hit := scene.Prim.Occluded(lm, pkt, leaf); hit.Test(lane) {
					pkt.Terminated.Set(lane)
					pkt.TFar[lane] = math.Inf(-1)
					return
				}
			} else {
				scene.Prim.Intersect(lm, pkt, leaf)
			}
			e := s.Pop()
			cur, curDist = e.Node, e.Dist
			continue
		}

		st.SingleRaySteps++

		var cands []laneChild
		switch {
		case cur.IsInternal():
			n := scene.staticNode(cur)
			hit, tNear := slab.TestAgainstFour(
				pkt.OrgX[lane], pkt.OrgY[lane], pkt.OrgZ[lane],
				pkt.RDirX[lane], pkt.RDirY[lane], pkt.RDirZ[lane],
				pkt.TNear[lane], pkt.TFar[lane],
				n.LowerX, n.LowerY, n.LowerZ, n.UpperX, n.UpperY, n.UpperZ,
			)
			for i, child := range n.Children() {
				if hit[i] {
					cands = append(cands, laneChild{ref: child, dist: tNear[i]})
				}
			}
		case cur.IsInternalMB():
			n := scene.motionNode(cur)
			var lowerX, lowerY, lowerZ, upperX, upperY, upperZ slab.Lanes4
			for i := 0; i < 4; i++ {
				b := n.ResolvedBox(i, t)
				lowerX[i], lowerY[i], lowerZ[i] = b.LowerX, b.LowerY, b.LowerZ
				upperX[i], upperY[i], upperZ[i] = b.UpperX, b.UpperY, b.UpperZ
			}
			hit, tNear := slab.TestAgainstFour(
				pkt.OrgX[lane], pkt.OrgY[lane], pkt.OrgZ[lane],
				pkt.RDirX[lane], pkt.RDirY[lane], pkt.RDirZ[lane],
				pkt.TNear[lane], pkt.TFar[lane],
				lowerX, lowerY, lowerZ, upperX, upperY, upperZ,
			)
			for i, child := range n.Children() {
				if hit[i] {
					cands = append(cands, laneChild{ref: child, dist: tNear[i]})
				}
			}
		default:
			panic("qbvh: malformed node ref")
		}

		if len(cands) == 0 {
			e := s.Pop()
			cur, curDist = e.Node, e.Dist
			continue
		}

		descendOrder(cands)
		for i := len(cands) - 1; i >= 1; i-- {
			s.Push(cands[i].ref, cands[i].dist)
		}
		cur, curDist = cands[0].ref, cands[0].dist
	}
}
