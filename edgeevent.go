// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"time"
	"unsafe"

	"github.com/gpiolinux/gpiocdev/uapi"
	"golang.org/x/sys/unix"
)

// EdgeEventType indicates the type of level transition reported by an
// EdgeEvent.
//
// Note that for active low lines a physical low level results in a logical
// high (active) state, so a physical falling edge is reported as a rising
// edge, and vice versa; these types name the logical transition.
type EdgeEventType int

const (
	_ EdgeEventType = iota

	// EdgeEventRisingEdge indicates an inactive to active transition.
	EdgeEventRisingEdge

	// EdgeEventFallingEdge indicates an active to inactive transition.
	EdgeEventFallingEdge
)

// EdgeEvent represents a single level transition detected on a requested
// line.
type EdgeEvent struct {
	// Offset is the line offset within the chip that triggered the event.
	Offset int

	// Timestamp is the time the event was detected, in nanoseconds, on the
	// clock configured for the line (monotonic by default).
	Timestamp time.Duration

	// Type identifies the transition detected.
	Type EdgeEventType

	// Seqno is the sequence number for this event among all events on all
	// lines in the request that produced it.
	Seqno uint32

	// LineSeqno is the sequence number for this event among all events on
	// this specific line.
	LineSeqno uint32
}

// Copy returns an independent copy of the EdgeEvent.
//
// EdgeEvent contains no heap-shared state, so Copy returns the receiver by
// value; events retrieved from an EdgeEventBuffer are already copies.
func (ee EdgeEvent) Copy() EdgeEvent {
	return ee
}

func newEdgeEvent(le uapi.LineEvent) EdgeEvent {
	return EdgeEvent{
		Offset:    int(le.Offset),
		Timestamp: time.Duration(le.Timestamp),
		Type:      EdgeEventType(le.ID),
		Seqno:     le.Seqno,
		LineSeqno: le.LineSeqno,
	}
}

// defaultEdgeEventBufferSize is the capacity applied when a caller requests
// EdgeEventBuffer capacity 0.
const defaultEdgeEventBufferSize = 64

// maxEdgeEventBufferSize is the largest capacity an EdgeEventBuffer will
// allocate, regardless of what is requested.
const maxEdgeEventBufferSize = 1024

var lineEventSize = int(unsafe.Sizeof(uapi.LineEvent{}))

// EdgeEventBuffer is a fixed-capacity batch reader for edge events on a
// line request fd.
//
// A single LineRequest.EdgeEventRead call issues one read(2) against the
// request fd, decoding as many raw kernel event records as were returned (up
// to the buffer's capacity) into the buffer's parsed events. Each read
// replaces the parsed events; Event returns them by value.
type EdgeEventBuffer struct {
	capacity int
	raw      []byte
	events   []EdgeEvent
}

// NewEdgeEventBuffer returns an EdgeEventBuffer sized to hold capacity
// events.
//
// capacity is clamped to [1,1024]; a capacity of 0 selects the default of
// 64.
func NewEdgeEventBuffer(capacity int) *EdgeEventBuffer {
	if capacity == 0 {
		capacity = defaultEdgeEventBufferSize
	}
	if capacity > maxEdgeEventBufferSize {
		capacity = maxEdgeEventBufferSize
	}
	if capacity < 1 {
		capacity = 1
	}
	return &EdgeEventBuffer{
		capacity: capacity,
		raw:      make([]byte, capacity*lineEventSize),
	}
}

// Capacity returns the maximum number of events the buffer can hold from a
// single EdgeEventRead.
func (b *EdgeEventBuffer) Capacity() int {
	return b.capacity
}

// NumEvents returns the number of events parsed by the most recent
// EdgeEventRead.
func (b *EdgeEventBuffer) NumEvents() int {
	return len(b.events)
}

// Event returns the i'th event parsed by the most recent EdgeEventRead.
//
// The event is returned by value, so it is unaffected by the buffer's next
// read.
func (b *EdgeEventBuffer) Event(i int) EdgeEvent {
	return b.events[i]
}

// read performs one read(2) against fd, decoding up to maxEvents raw kernel
// LineEvent records into the buffer.
//
// maxEvents is clamped to the buffer's capacity. A read returning a byte
// count that is not an exact multiple of the kernel record size never
// surfaces a partial record - it is reported as an error instead.
func (b *EdgeEventBuffer) read(fd uintptr, maxEvents int) (int, error) {
	if maxEvents <= 0 || maxEvents > b.capacity {
		maxEvents = b.capacity
	}
	n, err := unix.Read(int(fd), b.raw[:maxEvents*lineEventSize])
	if err != nil {
		return 0, err
	}
	if n%lineEventSize != 0 {
		return 0, ErrPartialRead
	}
	count := n / lineEventSize
	b.events = b.events[:0]
	for i := 0; i < count; i++ {
		le := (*uapi.LineEvent)(unsafe.Pointer(&b.raw[i*lineEventSize]))
		b.events = append(b.events, newEdgeEvent(*le))
	}
	return count, nil
}
