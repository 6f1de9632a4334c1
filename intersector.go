// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

package qbvh

import "github.com/rtcore/qbvh4/internal/mask"

// Intersector is the external primitive-intersector contract: the single
// collaborator the core delegates actual geometry intersection to. The
// core never inspects a leaf's primitives; it only knows
// PrimOffset/PrimCount (see LeafRef).
//
// Implementations must only mutate lanes whose bit is set in valid, and
// must be commutative with respect to closest-hit (keep the minimum TFar)
// and idempotent for any-hit.
type Intersector interface {
	// Intersect updates pkt's hit attributes and TFar in place for every
	// valid lane that finds a closer primitive in leaf.
	Intersect(valid mask.Mask4, pkt *RayPacket, leaf LeafRef)

	// Occluded tests leaf's primitives for any intersection within
	// [TNear, TFar] and returns the lanes that found one. It must not
	// mutate pkt itself — the driver folds the result into Terminated and
	// clamps TFar.
	Occluded(valid mask.Mask4, pkt *RayPacket, leaf LeafRef) mask.Mask4
}

// Scene bundles a BVH (Static/Motion node arenas, Leaves, Root) with the
// primitive intersector that knows how to resolve a leaf's primitives.
// Generic over P so the driver's leaf-intersect call is a direct, static
// call rather than an interface-dispatch indirection — everything else
// about P is opaque to the core.
type Scene[P Intersector] struct {
	Static []StaticNode
	Motion []MotionNode
	Leaves []LeafRef
	Root   NodeRef
	Prim   P
}

func (s *Scene[P]) staticNode(ref NodeRef) *StaticNode { return &s.Static[ref.Index()] }
func (s *Scene[P]) motionNode(ref NodeRef) *MotionNode { return &s.Motion[ref.Index()] }
func (s *Scene[P]) leaf(ref NodeRef) LeafRef           { return s.Leaves[ref.Index()] }
