// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"time"

	"github.com/gpiolinux/gpiocdev/uapi"
)

// LineInfo is an immutable snapshot of the publicly available kernel state
// of a single line.
//
// It is always available, whether or not the line is requested.
type LineInfo struct {
	// Offset is the line offset within the chip.
	Offset int

	// Name is the system name for the line, or empty if the kernel has none.
	Name string

	// Consumer is the string identifying the requester of the line, or
	// empty if the line is not requested.
	Consumer string

	// Used indicates the line is already requested by some process,
	// including possibly this one.
	Used bool

	// ActiveLow indicates the line is active low.
	ActiveLow bool

	// Direction is the current line direction.
	Direction LineDirection

	// Drive is the current output drive, meaningful only if Direction is
	// LineDirectionOutput.
	Drive LineDrive

	// Bias is the current line bias.
	Bias LineBias

	// EdgeDetection is the current edge detection setting.
	EdgeDetection LineEdge

	// Debounced indicates the line has debounce filtering applied.
	Debounced bool

	// DebouncePeriod is the debounce period, valid only if Debounced.
	DebouncePeriod time.Duration

	// EventClock is the clock source used to timestamp edge events on the
	// line.
	EventClock LineEventClock
}

// Copy returns an independent copy of the LineInfo.
//
// LineInfo contains no heap-shared state, so Copy returns the receiver by
// value; it exists for parity with callers who retain a snapshot returned
// through an InfoEvent beyond that event's own lifetime.
func (li LineInfo) Copy() LineInfo {
	return li
}

func newLineInfoV2(li uapi.LineInfoV2) LineInfo {
	info := LineInfo{
		Offset:    int(li.Offset),
		Name:      uapi.BytesToString(li.Name[:]),
		Consumer:  uapi.BytesToString(li.Consumer[:]),
		Used:      li.Flags.IsUsed(),
		ActiveLow: li.Flags.IsActiveLow(),
	}
	switch {
	case li.Flags.IsOutput():
		info.Direction = LineDirectionOutput
		switch {
		case li.Flags.IsOpenDrain():
			info.Drive = LineDriveOpenDrain
		case li.Flags.IsOpenSource():
			info.Drive = LineDriveOpenSource
		}
	case li.Flags.IsInput():
		info.Direction = LineDirectionInput
		switch {
		case li.Flags.IsBothEdges():
			info.EdgeDetection = LineEdgeBoth
		case li.Flags.IsRisingEdge():
			info.EdgeDetection = LineEdgeRising
		case li.Flags.IsFallingEdge():
			info.EdgeDetection = LineEdgeFalling
		}
	}
	switch {
	case li.Flags.IsBiasPullUp():
		info.Bias = LineBiasPullUp
	case li.Flags.IsBiasPullDown():
		info.Bias = LineBiasPullDown
	case li.Flags.IsBiasDisabled():
		info.Bias = LineBiasDisabled
	}
	if li.Flags.HasRealtimeEventClock() {
		info.EventClock = LineEventClockRealtime
	}
	for i := 0; i < int(li.NumAttrs); i++ {
		if li.Attrs[i].ID == uapi.LineAttributeIDDebounce {
			info.Debounced = true
			info.DebouncePeriod = time.Duration(li.Attrs[i].Value32()) * time.Microsecond
		}
	}
	return info
}

// InfoEventType identifies the kind of change reported by an InfoEvent.
type InfoEventType int

const (
	_ InfoEventType = iota

	// InfoEventRequested indicates the line has been requested.
	InfoEventRequested

	// InfoEventReleased indicates the line has been released.
	InfoEventReleased

	// InfoEventReconfigured indicates the line configuration has changed.
	InfoEventReconfigured
)

// InfoEvent reports a change to the kernel state of a watched line.
type InfoEvent struct {
	// Info is the updated line info.
	Info LineInfo

	// Timestamp is the time the change was detected, in nanoseconds, on the
	// clock the kernel uses for info events (CLOCK_MONOTONIC).
	Timestamp time.Duration

	// Type identifies the kind of change.
	Type InfoEventType
}

// Copy returns an independent copy of the InfoEvent.
func (ie InfoEvent) Copy() InfoEvent {
	ie.Info = ie.Info.Copy()
	return ie
}

func newInfoEvent(lic uapi.LineInfoChangedV2) InfoEvent {
	return InfoEvent{
		Info:      newLineInfoV2(lic.Info),
		Timestamp: time.Duration(lic.Timestamp),
		Type:      InfoEventType(lic.Type),
	}
}
