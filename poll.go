// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"math"
	"time"

	"golang.org/x/sys/unix"
)

// pollTimeoutMillis converts a nanosecond-granularity timeout to the
// millisecond argument poll(2) expects, rounding up so a wait never returns
// early, and saturating to infinite for durations beyond what an int32
// milliseconds count can represent.
func pollTimeoutMillis(timeout time.Duration) int {
	if timeout <= 0 {
		return 0
	}
	ms := timeout / time.Millisecond
	if timeout%time.Millisecond != 0 {
		ms++
	}
	if ms > math.MaxInt32 {
		return -1
	}
	return int(ms)
}

// pollWait polls fd for read readiness, waiting up to timeout.
//
// It returns true if the fd is ready to read, false on timeout. A signal
// interrupting the wait (EINTR) is returned as an error rather than
// retried - the caller decides whether to retry.
func pollWait(fd uintptr, timeout time.Duration) (bool, error) {
	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(pfd, pollTimeoutMillis(timeout))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
