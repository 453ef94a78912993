// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package gpiocdev mediates access to the Linux kernel's GPIO character
// device uAPI v2. It lets applications enumerate GPIO chips, inspect line
// metadata, request exclusive ownership of lines with a chosen
// configuration, read and write line values, reconfigure owned lines, and
// consume edge and line-info change events via poll-then-read, without
// owning any event loop of its own.
//
// Example of use:
//
//	c, err := gpiocdev.Open("gpiochip0")
//	if err != nil {
//		panic(err)
//	}
//	defer c.Close()
//	lc := gpiocdev.NewLineConfig().SetDirection(gpiocdev.LineDirectionOutput)
//	rc := gpiocdev.NewRequestConfig(4).SetConsumer("blinker")
//	req, err := c.RequestLines(rc, lc)
//	if err != nil {
//		panic(err)
//	}
//	defer req.Close()
//	req.SetValue(4, 1)
package gpiocdev

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gpiolinux/gpiocdev/uapi"
	"golang.org/x/sys/unix"
)

// Version identifies the GPIO uAPI version this library targets.
const Version = "2.0.0"

// Chip represents a single GPIO chip, and owns the chip character device fd.
type Chip struct {
	f *os.File

	// Name is the kernel name for this chip, e.g. "gpiochip0".
	Name string

	// Label is the chip's hardware label.
	Label string

	// lines is the number of GPIO lines on this chip.
	lines int

	mu     sync.Mutex
	closed bool
}

// Open opens a GPIO character device chip.
//
// name may be a bare chip name ("gpiochip0") or a full path
// ("/dev/gpiochip0").
func Open(name string) (*Chip, error) {
	path := nameToPath(name)
	if err := IsChip(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		// only happens if device removed/locked since IsChip call.
		return nil, err
	}
	ci, err := uapi.GetChipInfo(f.Fd())
	if err != nil {
		f.Close()
		return nil, err
	}
	c := &Chip{
		f:     f,
		Name:  uapi.BytesToString(ci.Name[:]),
		Label: uapi.BytesToString(ci.Label[:]),
		lines: int(ci.Lines),
	}
	if len(c.Label) == 0 {
		c.Label = "unknown"
	}
	return c, nil
}

// Close releases the chip fd.
//
// It does not affect any lines requested from the chip - outstanding
// LineRequests must be closed independently.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	return c.f.Close()
}

// Fd returns the file descriptor backing the chip, for integration into a
// caller-supplied poll/epoll loop.
func (c *Chip) Fd() uintptr {
	return c.f.Fd()
}

// Lines returns the number of lines exposed by the chip.
func (c *Chip) Lines() int {
	return c.lines
}

// LineInfo returns an owned snapshot of the publicly available kernel state
// of the line at offset.
//
// This does not require requesting the line.
func (c *Chip) LineInfo(offset int) (LineInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return LineInfo{}, ErrClosed
	}
	if offset < 0 || offset >= c.lines {
		return LineInfo{}, ErrInvalidOffset
	}
	li, err := uapi.GetLineInfoV2(c.f.Fd(), offset)
	if err != nil {
		return LineInfo{}, err
	}
	return newLineInfoV2(li), nil
}

// WatchLineInfo begins reporting changes to the line info of offset on the
// chip's InfoEvent stream, and returns the line's current info.
//
// Repeated calls on the same offset are passed to the kernel unchanged; any
// error the kernel reports for them is returned.
func (c *Chip) WatchLineInfo(offset int) (LineInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return LineInfo{}, ErrClosed
	}
	li := uapi.LineInfoV2{Offset: uint32(offset)}
	if err := uapi.WatchLineInfoV2(c.f.Fd(), &li); err != nil {
		return LineInfo{}, err
	}
	return newLineInfoV2(li), nil
}

// UnwatchLineInfo stops reporting changes to the line info of offset.
func (c *Chip) UnwatchLineInfo(offset int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return uapi.UnwatchLineInfo(c.f.Fd(), offset)
}

// InfoEventWait polls the chip fd for a pending line-info change event,
// waiting up to timeout.
//
// It returns true if an event is available to read, false on timeout.
func (c *Chip) InfoEventWait(timeout time.Duration) (bool, error) {
	return pollWait(c.f.Fd(), timeout)
}

// InfoEventRead performs a single blocking read of one line-info change
// event from the chip fd.
func (c *Chip) InfoEventRead() (InfoEvent, error) {
	lic, err := uapi.ReadLineInfoChangedV2(c.f.Fd())
	if err != nil {
		return InfoEvent{}, err
	}
	return newInfoEvent(lic), nil
}

// FindLine returns the offset of the line named name on this chip.
//
// If multiple lines share the name, the lowest matching offset is
// returned.
func (c *Chip) FindLine(name string) (int, error) {
	for o := 0; o < c.lines; o++ {
		info, err := c.LineInfo(o)
		if err == nil && info.Name == name {
			return o, nil
		}
	}
	return 0, ErrNotFound
}

// RequestLines requests control of the lines named in reqCfg, applying
// lineCfg as their configuration.
//
// If granted, control is maintained until the returned LineRequest is
// closed, independently of this Chip.
func (c *Chip) RequestLines(reqCfg *RequestConfig, lineCfg *LineConfig) (*LineRequest, error) {
	offsets := reqCfg.Offsets()
	for _, o := range offsets {
		if o < 0 || o >= c.lines {
			return nil, ErrInvalidOffset
		}
	}
	config, err := lineCfg.CompileToKernel(offsets)
	if err != nil {
		return nil, err
	}
	lr := uapi.LineRequest{
		Lines:           uint32(len(offsets)),
		Config:          config,
		EventBufferSize: uint32(reqCfg.eventBufferSize),
		Consumer:        truncateName(reqCfg.consumer, len(uapi.LineRequest{}.Consumer)-1),
	}
	for i, o := range offsets {
		lr.Offsets[i] = uint32(o)
	}
	if err := uapi.GetLine(c.f.Fd(), &lr); err != nil {
		return nil, err
	}
	return &LineRequest{
		fd:      uintptr(lr.Fd),
		offsets: append([]int(nil), offsets...),
	}, nil
}

// naturalLess orders chip names the way /dev lists them ("gpiochip2" before
// "gpiochip10").
func naturalLess(lhs, rhs string) bool {
	if len(lhs) == len(rhs) {
		return lhs < rhs
	}
	return len(lhs) < len(rhs)
}

// Chips returns the names of the available GPIO character devices, sorted
// in chip-number order.
//
// This performs the /dev directory scan explicitly left out of this
// library's public find-by-name workflow; it exists to let tests and other
// internal callers enumerate real chips without depending on a CLI tool.
func Chips() []string {
	ee, err := os.ReadDir("/dev")
	if err != nil {
		return nil
	}
	var cc []string
	for _, e := range ee {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			cc = append(cc, name)
		}
	}
	sort.Slice(cc, func(i, j int) bool { return naturalLess(cc[i], cc[j]) })
	return cc
}

// IsChip checks whether name identifies an accessible GPIO character
// device: a character device whose sysfs entry exists and whose device
// number matches the path given.
func IsChip(name string) error {
	path := nameToPath(name)
	fi, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeCharDevice == 0 {
		return ErrNotCharacterDevice
	}
	sysfspath := fmt.Sprintf("/sys/bus/gpio/devices/%s/dev", fi.Name())
	if err = unix.Access(sysfspath, unix.R_OK); err != nil {
		return ErrNotCharacterDevice
	}
	sysfsf, err := os.Open(sysfspath)
	if err != nil {
		// changed since Access?
		return ErrNotCharacterDevice
	}
	var sysfsdev [16]byte
	n, err := sysfsf.Read(sysfsdev[:])
	sysfsf.Close()
	if err != nil || n <= 0 {
		return ErrNotCharacterDevice
	}
	var stat unix.Stat_t
	if err = unix.Lstat(path, &stat); err != nil {
		return err
	}
	devstr := fmt.Sprintf("%d:%d", unix.Major(uint64(stat.Rdev)), unix.Minor(uint64(stat.Rdev)))
	sysstr := string(sysfsdev[:n-1])
	if devstr != sysstr {
		return ErrNotCharacterDevice
	}
	return nil
}

func nameToPath(name string) string {
	if strings.HasPrefix(name, "/dev/") {
		return name
	}
	return "/dev/" + name
}
