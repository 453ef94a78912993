// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev_test

import (
	"testing"

	"github.com/gpiolinux/gpiocdev"
	"github.com/stretchr/testify/assert"
)

func TestLineMaskZero(t *testing.T) {
	var m gpiocdev.LineMask
	m.Fill(8)
	m.Zero()
	assert.EqualValues(t, 0, m)
}

func TestLineMaskFill(t *testing.T) {
	patterns := []struct {
		n    int
		want gpiocdev.LineMask
	}{
		{0, 0},
		{-1, 0},
		{1, 0x1},
		{4, 0xf},
		{64, 0xffffffffffffffff},
		{100, 0xffffffffffffffff},
	}
	for _, p := range patterns {
		var m gpiocdev.LineMask
		m.Fill(p.n)
		assert.Equal(t, p.want, m, "Fill(%d)", p.n)
	}
}

func TestLineMaskSetClearAssignTest(t *testing.T) {
	var m gpiocdev.LineMask
	m.SetBit(3)
	assert.True(t, m.Test(3))
	assert.False(t, m.Test(2))

	m.ClearBit(3)
	assert.False(t, m.Test(3))

	m.AssignBit(5, true)
	assert.True(t, m.Test(5))
	m.AssignBit(5, false)
	assert.False(t, m.Test(5))
}
