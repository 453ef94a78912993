// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"testing"
	"unsafe"

	"github.com/gpiolinux/gpiocdev/uapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestNewEdgeEventBufferClampsCapacity(t *testing.T) {
	patterns := []struct {
		in   int
		want int
	}{
		{0, defaultEdgeEventBufferSize},
		{-5, 1},
		{10, 10},
		{maxEdgeEventBufferSize + 100, maxEdgeEventBufferSize},
	}
	for _, p := range patterns {
		b := NewEdgeEventBuffer(p.in)
		assert.Equal(t, p.want, b.Capacity())
	}
}

func writeLineEvent(t *testing.T, fd int, le uapi.LineEvent) {
	t.Helper()
	buf := (*[unsafe.Sizeof(uapi.LineEvent{})]byte)(unsafe.Pointer(&le))[:]
	n, err := unix.Write(fd, buf)
	require.Nil(t, err)
	require.Equal(t, len(buf), n)
}

func TestEdgeEventBufferRead(t *testing.T) {
	var p [2]int
	require.Nil(t, unix.Pipe2(p[:], unix.O_CLOEXEC))
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	writeLineEvent(t, p[1], uapi.LineEvent{Offset: 3, ID: uapi.LineEventRisingEdge, Seqno: 1, LineSeqno: 1})
	writeLineEvent(t, p[1], uapi.LineEvent{Offset: 3, ID: uapi.LineEventFallingEdge, Seqno: 2, LineSeqno: 2})

	b := NewEdgeEventBuffer(8)
	n, err := b.read(uintptr(p[0]), 8)
	require.Nil(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, b.NumEvents())

	e0 := b.Event(0)
	assert.Equal(t, 3, e0.Offset)
	assert.Equal(t, EdgeEventRisingEdge, e0.Type)

	e1 := b.Event(1)
	assert.Equal(t, EdgeEventFallingEdge, e1.Type)
}

func TestEdgeEventBufferPartialReadIsError(t *testing.T) {
	var p [2]int
	require.Nil(t, unix.Pipe2(p[:], unix.O_CLOEXEC))
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	// Write a single stray byte - never a multiple of the event record size.
	_, err := unix.Write(p[1], []byte{0x42})
	require.Nil(t, err)

	b := NewEdgeEventBuffer(8)
	_, err = b.read(uintptr(p[0]), 8)
	assert.Equal(t, ErrPartialRead, err)
}
