// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

// Package qbvh implements a hybrid packet/single-ray traversal core over a
// 4-ary bounding-volume hierarchy.
//
// A Driver (or MotionDriver, for scenes with motion-blur nodes) walks a
// Scene with a RayPacket of up to four rays at once, vectorizing the
// ray/box slab test across the packet's four lanes. When a node's active
// lane count drops at or below TSwitch, the walker switches to a per-lane
// single-ray descent instead, vectorizing the slab test across a node's
// four children rather than across rays. Both modes share the same node
// layout and the same fixed-capacity backtracking stack type (each
// single-ray walk keeps its own private stack); the switch is an
// internal performance decision invisible to the caller beyond the
// Stats() counters.
//
// The core never inspects scene geometry itself — it calls out to an
// Intersector supplied by the caller for every leaf it visits.
package qbvh
