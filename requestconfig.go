// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import "github.com/gpiolinux/gpiocdev/uapi"

// RequestConfig holds the parameters of a line request that are not part of
// the line electrical/logical configuration: which lines, under what
// consumer name, with how deep an event buffer.
type RequestConfig struct {
	consumer        string
	offsets         []int
	eventBufferSize int
}

// NewRequestConfig returns a RequestConfig requesting the given offsets.
func NewRequestConfig(offsets ...int) *RequestConfig {
	return &RequestConfig{offsets: append([]int(nil), offsets...)}
}

// SetConsumer sets the consumer string recorded by the kernel against the
// requested lines.
//
// The string is truncated to fit the kernel's name field if necessary.
func (rc *RequestConfig) SetConsumer(consumer string) *RequestConfig {
	rc.consumer = consumer
	return rc
}

// SetOffsets sets the offsets to be requested.
//
// The list is silently truncated to the kernel's maximum lines per request.
func (rc *RequestConfig) SetOffsets(offsets []int) *RequestConfig {
	rc.offsets = append([]int(nil), offsets...)
	return rc
}

// SetEventBufferSize sets the minimum size, in events, of the kernel buffer
// used to queue edge events for the request.
//
// Zero requests the kernel default; the kernel clamps the effective size.
func (rc *RequestConfig) SetEventBufferSize(size int) *RequestConfig {
	rc.eventBufferSize = size
	return rc
}

// Offsets returns the configured offset list, truncated to the kernel limit.
func (rc *RequestConfig) Offsets() []int {
	offsets := rc.offsets
	if len(offsets) > uapi.LinesMax {
		offsets = offsets[:uapi.LinesMax]
	}
	return offsets
}

func truncateName(s string, width int) [32]byte {
	var b [32]byte
	if width > len(b)-1 {
		width = len(b) - 1
	}
	if len(s) > width {
		s = s[:width]
	}
	copy(b[:], s)
	return b
}
