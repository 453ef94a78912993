// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"sync"
	"time"

	"github.com/gpiolinux/gpiocdev/uapi"
	"golang.org/x/sys/unix"
)

// LineRequest represents a set of lines requested, and so exclusively
// owned, on a chip.
//
// A LineRequest owns the kernel request fd independently of the Chip that
// created it - closing the chip does not close, or otherwise affect,
// outstanding requests.
type LineRequest struct {
	fd      uintptr
	offsets []int

	mu     sync.Mutex
	closed bool
}

// Fd returns the file descriptor backing the request, for integration into
// a caller-supplied poll/epoll loop.
//
// The fd remains owned by the LineRequest; callers must not close it
// directly.
func (lr *LineRequest) Fd() uintptr {
	return lr.fd
}

// Offsets returns the offsets of the lines in the request, in the order
// used at request time. This order determines the bit positions the kernel
// uses for value and mask bitmaps.
func (lr *LineRequest) Offsets() []int {
	return lr.offsets
}

func (lr *LineRequest) indexOf(offset int) int {
	return indexOf(offset, lr.offsets)
}

// Value returns the current logical value of the line at offset.
func (lr *LineRequest) Value(offset int) (int, error) {
	values := make([]int, 1)
	if err := lr.Values([]int{offset}, values); err != nil {
		return 0, err
	}
	return values[0], nil
}

// Values retrieves the current logical values of the lines at subOffsets,
// in the order given, writing them into values.
//
// Each offset in subOffsets must be one requested by this LineRequest.
func (lr *LineRequest) Values(subOffsets []int, values []int) error {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.closed {
		return ErrClosed
	}
	var mask uapi.LineBitmap
	for _, o := range subOffsets {
		idx := lr.indexOf(o)
		if idx < 0 {
			return ErrInvalidOffset
		}
		mask = mask.Set(idx, 1)
	}
	lv := uapi.LineValues{Mask: mask}
	if err := uapi.GetLineValuesV2(lr.fd, &lv); err != nil {
		return err
	}
	for i, o := range subOffsets {
		values[i] = lv.Get(lr.indexOf(o))
	}
	return nil
}

// SetValue sets the logical value of the line at offset.
//
// Only valid for lines requested as outputs.
func (lr *LineRequest) SetValue(offset, value int) error {
	return lr.SetValues([]int{offset}, []int{value})
}

// SetValues sets the logical values of the lines at subOffsets.
//
// Only valid for lines requested as outputs. All lines in subOffsets are
// set in a single kernel call.
func (lr *LineRequest) SetValues(subOffsets []int, values []int) error {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.closed {
		return ErrClosed
	}
	n := len(subOffsets)
	if len(values) < n {
		n = len(values)
	}
	var mask, bits uapi.LineBitmap
	for i := 0; i < n; i++ {
		idx := lr.indexOf(subOffsets[i])
		if idx < 0 {
			return ErrInvalidOffset
		}
		v := 0
		if values[i] != 0 {
			v = 1
		}
		mask = mask.Set(idx, 1)
		bits = bits.Set(idx, v)
	}
	lv := uapi.LineValues{Mask: mask, Bits: bits}
	return uapi.SetLineValuesV2(lr.fd, lv)
}

// Reconfigure compiles lineCfg against the request's offset list and
// applies it to the still-open request fd.
//
// Any error the kernel reports for the new configuration is returned.
func (lr *LineRequest) Reconfigure(lineCfg *LineConfig) error {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.closed {
		return ErrClosed
	}
	cfg, err := lineCfg.CompileToKernel(lr.offsets)
	if err != nil {
		return err
	}
	return uapi.SetLineConfigV2(lr.fd, &cfg)
}

// EdgeEventWait polls the request fd for a pending edge event, waiting up
// to timeout.
//
// It returns true if an event is available to read, false on timeout.
func (lr *LineRequest) EdgeEventWait(timeout time.Duration) (bool, error) {
	return pollWait(lr.fd, timeout)
}

// EdgeEventRead reads up to maxEvents pending edge events, or as many as
// buf's capacity allows if that is smaller, into buf in a single read(2)
// call.
//
// It returns the number of events read. EdgeEventRead blocks until at
// least one event is available; pair it with EdgeEventWait to avoid
// blocking indefinitely.
func (lr *LineRequest) EdgeEventRead(buf *EdgeEventBuffer, maxEvents int) (int, error) {
	lr.mu.Lock()
	fd := lr.fd
	closed := lr.closed
	lr.mu.Unlock()
	if closed {
		return 0, ErrClosed
	}
	return buf.read(fd, maxEvents)
}

// Close releases the line request, relinquishing the requested lines.
func (lr *LineRequest) Close() error {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.closed {
		return ErrClosed
	}
	lr.closed = true
	return unix.Close(int(lr.fd))
}
