// SPDX-License-Identifier: MIT

package gpiocdev

// LineMask is a fixed-width bitmap over line indices within a single
// request (not hardware offsets — a position in a request's offset array).
//
// The kernel v2 uAPI caps a request at 64 lines (uapi.LinesMax), so a single
// uint64 word covers every line a request can contain. Operations mirror
// libgpiod's bitmap helpers: zero, fill, set/clear/assign/test a single bit.
// All are plain bitwise ops with no allocation; Fill branches on the range
// of numLines and AssignBit branches on value.
type LineMask uint64

// Zero clears every bit in the mask.
func (m *LineMask) Zero() {
	*m = 0
}

// Fill sets bits 0..numLines-1 and clears the rest.
func (m *LineMask) Fill(numLines int) {
	if numLines <= 0 {
		*m = 0
		return
	}
	if numLines >= 64 {
		*m = ^LineMask(0)
		return
	}
	*m = (LineMask(1) << uint(numLines)) - 1
}

// SetBit sets bit i.
func (m *LineMask) SetBit(i int) {
	*m |= LineMask(1) << uint(i)
}

// ClearBit clears bit i.
func (m *LineMask) ClearBit(i int) {
	*m &^= LineMask(1) << uint(i)
}

// AssignBit sets bit i to the given value.
func (m *LineMask) AssignBit(i int, value bool) {
	if value {
		m.SetBit(i)
	} else {
		m.ClearBit(i)
	}
}

// Test reports whether bit i is set.
func (m LineMask) Test(i int) bool {
	return m&(LineMask(1)<<uint(i)) != 0
}
