// Copyright (c) 2026 RT Core Authors
// SPDX-License-Identifier: MIT

package qbvh

// TSwitch is the lane-utilization threshold at or below which the
// traversal switches to single-ray mode. A compile-time constant by
// design, following this module's general preference for fixed array
// widths and untyped constants over a runtime configuration surface.
const TSwitch = 3

// SwitchDuringDown enables the mid-traversal switch check.
const SwitchDuringDown = true

// StackCapacity bounds traversal stack depth. 64 covers any BVH built to a
// sane max depth with a comfortable margin; callers intersecting against
// deeper trees must build with a larger capacity — there is no runtime
// fallback, overflow is a programming error.
const StackCapacity = 64
