// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameToPath(t *testing.T) {
	assert.Equal(t, "/dev/gpiochip0", nameToPath("gpiochip0"))
	assert.Equal(t, "/dev/gpiochip0", nameToPath("/dev/gpiochip0"))
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("gpiochip2", "gpiochip10"))
	assert.True(t, naturalLess("gpiochip0", "gpiochip1"))
	assert.False(t, naturalLess("gpiochip10", "gpiochip2"))
}

func TestIsChipRejectsMissingDevice(t *testing.T) {
	err := IsChip("/dev/does-not-exist-gpiochip")
	assert.NotNil(t, err)
}
