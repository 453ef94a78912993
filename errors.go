// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import "errors"

var (
	// ErrClosed indicates the chip or line request has already been closed.
	ErrClosed = errors.New("already closed")

	// ErrInvalidOffset indicates a line offset is invalid - either outside
	// the chip's line count, or not present in a request's offset list.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrNotCharacterDevice indicates the path given to Open or IsChip does
	// not identify a GPIO character device.
	ErrNotCharacterDevice = errors.New("not a character device")

	// ErrNotFound indicates FindLine found no line with the given name.
	ErrNotFound = errors.New("not found")

	// ErrPartialRead indicates a read from a request or chip fd returned a
	// byte count that was not an exact multiple of the kernel event record
	// size. This should never happen against a genuine GPIO chardev fd; it
	// is surfaced rather than exposing a truncated event.
	ErrPartialRead = errors.New("partial event record read")
)
