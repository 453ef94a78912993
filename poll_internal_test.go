// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestPollTimeoutMillis(t *testing.T) {
	patterns := []struct {
		name string
		in   time.Duration
		want int
	}{
		{"zero", 0, 0},
		{"negative", -time.Second, 0},
		{"exact", 5 * time.Millisecond, 5},
		{"rounds up", 5*time.Millisecond + time.Microsecond, 6},
		{"saturates", time.Duration(math.MaxInt64), -1},
	}
	for _, p := range patterns {
		t.Run(p.name, func(t *testing.T) {
			assert.Equal(t, p.want, pollTimeoutMillis(p.in))
		})
	}
}

func TestPollWaitTimeout(t *testing.T) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		t.Fatal(err)
	}
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	ready, err := pollWait(uintptr(p[0]), time.Millisecond)
	assert.Nil(t, err)
	assert.False(t, ready)
}

func TestPollWaitReady(t *testing.T) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		t.Fatal(err)
	}
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	if _, err := unix.Write(p[1], []byte{1}); err != nil {
		t.Fatal(err)
	}
	ready, err := pollWait(uintptr(p[0]), time.Second)
	assert.Nil(t, err)
	assert.True(t, ready)
}
