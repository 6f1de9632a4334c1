// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

package qbvh

import (
	"iter"

	"github.com/rtcore/qbvh4/internal/slab"
)

// NodeRef is a tagged handle identifying one of: empty, invalid-sentinel,
// internal static node, internal motion-blur node, or leaf. The low tagBits
// bits carry the tag; the remaining bits are an index into the owning
// Scene's node/leaf arrays.
//
// Node refs are packed integers (offset + tag) into flat arenas rather than
// pointers: a BVH's nodes are built once and never individually freed, so
// there is no need for the independent object lifetimes a pointer would
// buy.
type NodeRef uint32

const (
	tagBits = 3
	tagMask = uint32(1)<<tagBits - 1
)

// Node tags.
const (
	tagEmpty nodeTag = iota
	tagSentinel
	tagStatic
	tagMotion
	tagLeaf
)

type nodeTag uint32

// EmptyRef denotes an absent child.
const EmptyRef NodeRef = NodeRef(tagEmpty)

// SentinelRef is the stack-bottom marker; popping it terminates a walk.
const SentinelRef NodeRef = NodeRef(tagSentinel)

// MakeStaticRef builds a NodeRef pointing at Scene.Static[idx].
func MakeStaticRef(idx uint32) NodeRef { return NodeRef(idx<<tagBits) | NodeRef(tagStatic) }

// MakeMotionRef builds a NodeRef pointing at Scene.Motion[idx].
func MakeMotionRef(idx uint32) NodeRef { return NodeRef(idx<<tagBits) | NodeRef(tagMotion) }

// MakeLeafRef builds a NodeRef pointing at Scene.Leaves[idx].
func MakeLeafRef(idx uint32) NodeRef { return NodeRef(idx<<tagBits) | NodeRef(tagLeaf) }

func (r NodeRef) tag() nodeTag { return nodeTag(uint32(r) & tagMask) }

// Index returns the arena index this ref points at. Only meaningful when
// the ref is a static/motion/leaf ref, not empty or sentinel.
func (r NodeRef) Index() uint32 { return uint32(r) >> tagBits }

// IsEmpty reports whether r is the "absent child" sentinel.
func (r NodeRef) IsEmpty() bool { return r.tag() == tagEmpty }

// IsSentinel reports whether r is the stack-bottom marker.
func (r NodeRef) IsSentinel() bool { return r.tag() == tagSentinel }

// IsInternal reports whether r points at a static internal node.
func (r NodeRef) IsInternal() bool { return r.tag() == tagStatic }

// IsInternalMB reports whether r points at a motion-blur internal node.
func (r NodeRef) IsInternalMB() bool { return r.tag() == tagMotion }

// IsLeaf reports whether r points at a leaf.
func (r NodeRef) IsLeaf() bool { return r.tag() == tagLeaf }

// StaticNode is a 4-ary internal node whose children's bounds do not move.
// The six coordinate arrays are row-major per coordinate — LowerX[i] is
// child i's lower x bound — so that all four children's bounds for one
// axis load together as a single vector. The same layout lets the
// single-ray walker vectorize *across children* with [slab.TestAgainstFour]
// while the packet walker vectorizes *across rays* with [slab.Test], one
// child at a time.
type StaticNode struct {
	ChildRefs                    [4]NodeRef
	LowerX, LowerY, LowerZ       [4]float64
	UpperX, UpperY, UpperZ       [4]float64
}

// MotionNode is a StaticNode plus a per-axis linear velocity: at ray time
// t the effective bound is coord + t*dcoord.
type MotionNode struct {
	ChildRefs              [4]NodeRef
	LowerX, LowerY, LowerZ [4]float64
	UpperX, UpperY, UpperZ [4]float64
	DLowerX, DLowerY, DLowerZ [4]float64
	DUpperX, DUpperY, DUpperZ [4]float64
}

// LeafRef is a leaf's item count and offset into the scene's primitive
// array. The contents of PrimOffset/PrimCount are opaque to the core —
// only the external primitive intersector interprets them.
type LeafRef struct {
	PrimOffset uint32
	PrimCount  uint32
}

// ChildBox returns child i's static box, ignoring presence — callers must
// check Children() first or otherwise know i is in range [0, childCount).
func (n *StaticNode) ChildBox(i int) slab.Box {
	return slab.Box{
		LowerX: n.LowerX[i], LowerY: n.LowerY[i], LowerZ: n.LowerZ[i],
		UpperX: n.UpperX[i], UpperY: n.UpperY[i], UpperZ: n.UpperZ[i],
	}
}

// Children iterates over this node's present children in slot order,
// stopping at the first empty child: children are packed dense-left, so a
// child equal to the empty sentinel terminates the iteration early.
func (n *StaticNode) Children() iter.Seq2[int, NodeRef] {
	return func(yield func(int, NodeRef) bool) {
		for i := 0; i < 4; i++ {
			c := n.ChildRefs[i]
			if c.IsEmpty() {
				return
			}
			if !yield(i, c) {
				return
			}
		}
	}
}

// ResolvedBox returns child i's box at ray time t (base + t*delta).
func (n *MotionNode) ResolvedBox(i int, t float64) slab.Box {
	base := slab.Box{
		LowerX: n.LowerX[i], LowerY: n.LowerY[i], LowerZ: n.LowerZ[i],
		UpperX: n.UpperX[i], UpperY: n.UpperY[i], UpperZ: n.UpperZ[i],
	}
	delta := slab.Box{
		LowerX: n.DLowerX[i], LowerY: n.DLowerY[i], LowerZ: n.DLowerZ[i],
		UpperX: n.DUpperX[i], UpperY: n.DUpperY[i], UpperZ: n.DUpperZ[i],
	}
	return slab.ResolveMotionBox(base, delta, t)
}

// Children iterates over this node's present children (see
// StaticNode.Children).
func (n *MotionNode) Children() iter.Seq2[int, NodeRef] {
	return func(yield func(int, NodeRef) bool) {
		for i := 0; i < 4; i++ {
			c := n.ChildRefs[i]
			if c.IsEmpty() {
				return
			}
			if !yield(i, c) {
				return
			}
		}
	}
}
