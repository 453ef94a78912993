// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"testing"
	"time"

	"github.com/gpiolinux/gpiocdev/uapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"pgregory.net/rapid"
)

func TestSanitizeOffsets(t *testing.T) {
	patterns := []struct {
		name string
		in   []int
		out  []int
	}{
		{"empty", nil, []int{}},
		{"sorted unique", []int{1, 2, 3}, []int{1, 2, 3}},
		{"unsorted", []int{3, 1, 2}, []int{1, 2, 3}},
		{"dupes", []int{2, 2, 1, 1, 3}, []int{1, 2, 3}},
	}
	for _, p := range patterns {
		t.Run(p.name, func(t *testing.T) {
			got := sanitizeOffsets(p.in)
			assert.Equal(t, p.out, got)
		})
	}
}

func TestSanitizeOffsetsClampsToLinesMax(t *testing.T) {
	in := make([]int, uapi.LinesMax+10)
	for i := range in {
		in[i] = i
	}
	got := sanitizeOffsets(in)
	assert.Len(t, got, uapi.LinesMax)
}

func TestSanitizeOffsetsNeverGrows(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		in := rapid.SliceOfN(rapid.IntRange(0, 200), 0, 80).Draw(rt, "offsets")
		got := sanitizeOffsets(in)
		assert.LessOrEqual(rt, len(got), len(in))
		assert.LessOrEqual(rt, len(got), uapi.LinesMax)
		for i := 1; i < len(got); i++ {
			assert.Less(rt, got[i-1], got[i])
		}
	})
}

func TestToKernelFlagsDefaults(t *testing.T) {
	flags, err := toKernelFlags(baseConfig{})
	require.Nil(t, err)
	assert.Equal(t, uapi.LineFlagV2(0), flags)
}

func TestToKernelFlagsEdgeImpliesInput(t *testing.T) {
	flags, err := toKernelFlags(baseConfig{direction: LineDirectionOutput, edge: LineEdgeRising})
	require.Nil(t, err)
	assert.True(t, flags.IsInput())
	assert.False(t, flags.IsOutput())
	assert.True(t, flags.IsRisingEdge())
}

func TestToKernelFlagsBothEdges(t *testing.T) {
	flags, err := toKernelFlags(baseConfig{edge: LineEdgeBoth})
	require.Nil(t, err)
	assert.True(t, flags.IsBothEdges())
}

func TestToKernelFlagsInvalid(t *testing.T) {
	_, err := toKernelFlags(baseConfig{direction: LineDirection(99)})
	assert.Equal(t, unix.EINVAL, err)
}

func TestLineConfigSimpleOutput(t *testing.T) {
	lc := NewLineConfig().SetDirection(LineDirectionOutput).SetOutputValue(2, 1)
	cfg, err := lc.CompileToKernel([]int{4, 2, 7})
	require.Nil(t, err)
	assert.True(t, cfg.Flags.IsOutput())
	require.EqualValues(t, 1, cfg.NumAttrs)
	assert.Equal(t, uapi.LineAttributeIDOutputValues, cfg.Attrs[0].Attr.ID)
}

// TestLineConfigDebounceWinsOverFlags exercises the scenario where a
// secondary override carries both a debounce period and flags: the
// debounce attribute is emitted and the flags are silently dropped.
func TestLineConfigDebounceWinsOverFlags(t *testing.T) {
	offsets := []int{0, 1, 2}
	lc := NewLineConfig().
		SetDirectionSubset(LineDirectionOutput, []int{1}).
		SetDebouncePeriodSubset(10*time.Millisecond, []int{1})
	cfg, err := lc.CompileToKernel(offsets)
	require.Nil(t, err)
	require.EqualValues(t, 1, cfg.NumAttrs)
	assert.Equal(t, uapi.LineAttributeIDDebounce, cfg.Attrs[0].Attr.ID)
}

func TestLineConfigTooManySecondariesIsE2BIG(t *testing.T) {
	lc := NewLineConfig()
	for i := 0; i < maxLineAttrs+1; i++ {
		lc.SetDirectionOffset(LineDirectionOutput, i)
	}
	_, err := lc.CompileToKernel([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	assert.Equal(t, unix.E2BIG, err)
}

func TestLineConfigRepeatedSecondaryIsIdempotent(t *testing.T) {
	lc := NewLineConfig()
	lc.SetDirectionOffset(LineDirectionOutput, 1)
	lc.SetBiasOffset(LineBiasPullUp, 1)
	assert.Len(t, lc.secondary, 1)
}

func TestLineConfigOutputValuesOverflowIsE2BIG(t *testing.T) {
	lc := NewLineConfig()
	offsets := make([]int, uapi.LinesMax+1)
	for i := range offsets {
		offsets[i] = i
		lc.SetOutputValue(i, i%2)
	}
	_, err := lc.CompileToKernel(offsets)
	assert.Equal(t, unix.E2BIG, err)
}

func TestLineConfigUnknownOffsetIsEINVAL(t *testing.T) {
	lc := NewLineConfig().SetOutputValue(99, 1)
	_, err := lc.CompileToKernel([]int{0, 1, 2})
	assert.Equal(t, unix.EINVAL, err)
}

func TestIndexOf(t *testing.T) {
	offsets := []int{4, 2, 7}
	assert.Equal(t, 0, indexOf(4, offsets))
	assert.Equal(t, 2, indexOf(7, offsets))
	assert.Equal(t, -1, indexOf(9, offsets))
}
