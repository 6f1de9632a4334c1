// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

package qbvh

import (
	"math"

	"github.com/rtcore/qbvh4/internal/mask"
	"github.com/rtcore/qbvh4/internal/slab"
)

// RayPacket holds four rays in SoA form plus their derived precomputed
// fields. The caller fills Org*/Dir*/TNear/TFar/Time; a Driver's entry
// points call Precompute with their valid mask, which sets Valid and the
// derived fields.
type RayPacket struct {
	OrgX, OrgY, OrgZ slab.Lanes4
	DirX, DirY, DirZ slab.Lanes4
	TNear, TFar      slab.Lanes4
	Time             slab.Lanes4

	// Derived fields, written by Precompute.
	RDirX, RDirY, RDirZ slab.Lanes4

	// Valid marks which lanes carry real rays; an inactive lane's ray data
	// may be undefined.
	Valid mask.Mask4

	// Terminated is any-hit mode's per-lane "a hit was already found" mask.
	// Unused by closest-hit.
	Terminated mask.Mask4
}

// Precompute fills RDir* and, for every lane not in valid, forces
// TNear=+Inf, TFar=-Inf so it can neither intersect a box nor update a
// hit.
func (p *RayPacket) Precompute(valid mask.Mask4) {
	p.Valid = valid
	for i := 0; i < mask.Lanes; i++ {
		p.RDirX[i] = slab.RecipSafe(p.DirX[i])
		p.RDirY[i] = slab.RecipSafe(p.DirY[i])
		p.RDirZ[i] = slab.RecipSafe(p.DirZ[i])

		if !valid.Test(i) {
			p.TNear[i] = math.Inf(1)
			p.TFar[i] = math.Inf(-1)
		}
	}
}
