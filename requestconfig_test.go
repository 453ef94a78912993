// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev_test

import (
	"testing"

	"github.com/gpiolinux/gpiocdev"
	"github.com/gpiolinux/gpiocdev/uapi"
	"github.com/stretchr/testify/assert"
)

func TestRequestConfigOffsets(t *testing.T) {
	rc := gpiocdev.NewRequestConfig(1, 2, 3)
	assert.Equal(t, []int{1, 2, 3}, rc.Offsets())
}

func TestRequestConfigOffsetsClampedToLinesMax(t *testing.T) {
	offsets := make([]int, uapi.LinesMax+5)
	for i := range offsets {
		offsets[i] = i
	}
	rc := gpiocdev.NewRequestConfig().SetOffsets(offsets)
	assert.Len(t, rc.Offsets(), uapi.LinesMax)
}

func TestRequestConfigFluentSetters(t *testing.T) {
	rc := gpiocdev.NewRequestConfig(0).
		SetConsumer("test-consumer").
		SetEventBufferSize(32)
	assert.NotNil(t, rc)
}
