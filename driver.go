// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

package qbvh

import (
	"github.com/rtcore/qbvh4/internal/mask"
	"github.com/rtcore/qbvh4/internal/stats"
)

// Driver is the closest-hit/any-hit entry point for a static-only scene.
// The zero value is ready to use.
//
// Driver and MotionDriver are separate concrete types for different node
// mixes rather than one type with a runtime layout flag — pick the type
// that matches your scene's node mix rather than branching on it per call.
type Driver[P Intersector] struct {
	stats stats.Counters
}

// Intersect finds, for every lane set in valid, the closest primitive hit
// along that lane's ray, updating pkt in place.
func (d *Driver[P]) Intersect(valid mask.Mask4, scene *Scene[P], pkt *RayPacket) {
	pkt.Precompute(valid)
	d.stats.Reset()
	runPacketStatic(scene, pkt, false, &d.stats)
}

// Occluded reports, for every lane set in valid, whether any primitive lies
// within [TNear, TFar] of that lane's ray. It does not update pkt's hit
// attributes, only pkt.Terminated/TFar bookkeeping used internally to
// short-circuit already-occluded lanes.
func (d *Driver[P]) Occluded(valid mask.Mask4, scene *Scene[P], pkt *RayPacket) mask.Mask4 {
	pkt.Precompute(valid)
	pkt.Terminated = mask.Mask4{}
	d.stats.Reset()
	runPacketStatic(scene, pkt, true, &d.stats)
	return pkt.Terminated
}

// Stats returns a copy of the counters accumulated by the most recent call
// to Intersect or Occluded.
func (d *Driver[P]) Stats() stats.Counters { return d.stats }

// MotionDriver is Driver's counterpart for scenes that may contain
// motion-blur internal nodes in addition to static ones.
type MotionDriver[P Intersector] struct {
	stats stats.Counters
}

// Intersect is Driver.Intersect for a scene that may contain motion nodes.
func (d *MotionDriver[P]) Intersect(valid mask.Mask4, scene *Scene[P], pkt *RayPacket) {
	pkt.Precompute(valid)
	d.stats.Reset()
	runPacketMixed(scene, pkt, false, &d.stats)
}

// Occluded is Driver.Occluded for a scene that may contain motion nodes.
func (d *MotionDriver[P]) Occluded(valid mask.Mask4, scene *Scene[P], pkt *RayPacket) mask.Mask4 {
	pkt.Precompute(valid)
	pkt.Terminated = mask.Mask4{}
	d.stats.Reset()
	runPacketMixed(scene, pkt, true, &d.stats)
	return pkt.Terminated
}

// Stats returns a copy of the counters accumulated by the most recent call
// to Intersect or Occluded.
func (d *MotionDriver[P]) Stats() stats.Counters { return d.stats }
