// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

// Package uapi provides the Linux GPIO character device uAPI v2 definitions
// used to request and control lines on a GPIO chip.
package uapi

import (
	"bytes"
	"unsafe"

	"golang.org/x/sys/unix"
)

// BytesToString converts a NUL-padded byte array, as used for kernel name
// fields, into a Go string. The string is truncated at the first NUL, or at
// the end of the slice if unterminated.
func BytesToString(a []byte) string {
	n := bytes.IndexByte(a, 0)
	if n == -1 {
		n = len(a)
	}
	return string(a[:n])
}

// Size of name and consumer strings.
const nameSize = 32

// ioctl command codes, encoded via ior/iorw/iow in ioctl.go.
type ioctl uintptr

var getChipInfoIoctl ioctl

func init() {
	// ioctls require struct sizes which are only available at runtime.
	var ci ChipInfo
	getChipInfoIoctl = ior(0xB4, 0x01, unsafe.Sizeof(ci))
}

// fdReader adapts a raw fd to the io.Reader binary.Read needs to decode
// fixed-size event records directly out of the kernel.
type fdReader int

func (fd fdReader) Read(b []byte) (int, error) {
	return unix.Read(int(fd), b)
}

// ChipInfo contains the details of a GPIO chip.
type ChipInfo struct {
	Name  [nameSize]byte
	Label [nameSize]byte
	Lines uint32
}

// GetChipInfo returns the ChipInfo for the GPIO character device.
//
// The fd is an open GPIO character device.
func GetChipInfo(fd uintptr) (ChipInfo, error) {
	var ci ChipInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(getChipInfoIoctl),
		uintptr(unsafe.Pointer(&ci)))
	if errno != 0 {
		return ci, errno
	}
	return ci, nil
}
