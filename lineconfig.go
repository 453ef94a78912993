// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"sort"
	"time"

	"github.com/gpiolinux/gpiocdev/uapi"
	"golang.org/x/sys/unix"
)

// LineDirection indicates the direction of a line.
type LineDirection int

const (
	// LineDirectionAsIs leaves the line direction unchanged.
	LineDirectionAsIs LineDirection = iota

	// LineDirectionInput indicates the line is an input.
	LineDirectionInput

	// LineDirectionOutput indicates the line is an output.
	LineDirectionOutput
)

// LineDrive indicates the drive of an output line.
type LineDrive int

const (
	// LineDrivePushPull indicates the line is driven in both directions.
	LineDrivePushPull LineDrive = iota

	// LineDriveOpenDrain indicates the line is an open drain output.
	LineDriveOpenDrain

	// LineDriveOpenSource indicates the line is an open source output.
	LineDriveOpenSource
)

// LineBias indicates the bias applied to a line.
type LineBias int

const (
	// LineBiasAsIs leaves the line bias unchanged.
	LineBiasAsIs LineBias = iota

	// LineBiasDisabled indicates the line bias is disabled.
	LineBiasDisabled

	// LineBiasPullUp indicates the line has pull up enabled.
	LineBiasPullUp

	// LineBiasPullDown indicates the line has pull down enabled.
	LineBiasPullDown
)

// LineEdge indicates the edges detected by the line.
type LineEdge int

const (
	// LineEdgeNone indicates the line edge detection is disabled.
	LineEdgeNone LineEdge = iota

	// LineEdgeRising indicates the line has rising edge detection enabled.
	LineEdgeRising

	// LineEdgeFalling indicates the line has falling edge detection enabled.
	LineEdgeFalling

	// LineEdgeBoth indicates the line has both rising and falling edge
	// detection enabled.
	LineEdgeBoth = LineEdgeRising | LineEdgeFalling
)

// LineEventClock indicates the source clock used to timestamp edge events.
type LineEventClock int

const (
	// LineEventClockMonotonic indicates the source clock is CLOCK_MONOTONIC.
	LineEventClockMonotonic LineEventClock = iota

	// LineEventClockRealtime indicates the source clock is CLOCK_REALTIME.
	LineEventClockRealtime
)

// maxLineAttrs is the kernel limit on the number of config attributes that
// can be attached to a single line request (gpio_v2_line_config.attrs).
const maxLineAttrs = 10

// baseConfig is the set of per-line options that can be applied either as
// the primary (default) configuration or as a secondary override for a
// subset of requested offsets.
type baseConfig struct {
	direction      LineDirection
	edge           LineEdge
	drive          LineDrive
	bias           LineBias
	activeLow      bool
	eventClock     LineEventClock
	debouncePeriod time.Duration
}

// secondaryConfig is a baseConfig paired with the exact, sorted, deduplicated
// set of offsets (request-relative) it overrides.
type secondaryConfig struct {
	offsets []int
	cfg     baseConfig
}

// outputValue is a single offset -> logical value override.
type outputValue struct {
	offset int
	value  int
}

// LineConfig accumulates the configuration to be applied to a set of
// requested lines.
//
// Configuration is built up by independent setter calls: each sets one
// option, either for every requested line (the primary/global form), for a
// single offset, or for an explicit subset of offsets. Setters never fail -
// invalid combinations and capacity overflows are only detected when the
// config is compiled against a concrete offset list (CompileToKernel), which
// happens as a side effect of RequestLines and Reconfigure.
//
// The zero value is a ready to use LineConfig with every option left unset
// (kernel defaults apply).
type LineConfig struct {
	primary      baseConfig
	secondary    []*secondaryConfig
	outputValues []outputValue

	// tooComplex is sticky: once the secondary table or the output value
	// table overflows, or a compilation overflows, every subsequent
	// per-offset, subset and output value setter is a silent no-op and every
	// subsequent compilation fails with unix.E2BIG. The global setters do
	// not check it and still update the primary config.
	tooComplex bool
}

// NewLineConfig returns a new, empty LineConfig.
func NewLineConfig() *LineConfig {
	return &LineConfig{}
}

func sanitizeOffsets(offsets []int) []int {
	n := len(offsets)
	if n > uapi.LinesMax {
		n = uapi.LinesMax
	}
	norm := make([]int, n)
	copy(norm, offsets[:n])
	sort.Ints(norm)
	out := norm[:0]
	for i, o := range norm {
		if i == 0 || o != norm[i-1] {
			out = append(out, o)
		}
	}
	return out
}

func offsetsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// secondaryFor returns the secondary block covering exactly the normalized
// offset set, allocating one if no existing block matches. Returns nil (and,
// on overflow, sets tooComplex) if the config cannot accept another setter.
func (lc *LineConfig) secondaryFor(offsets []int) *secondaryConfig {
	if lc.tooComplex {
		return nil
	}
	norm := sanitizeOffsets(offsets)
	for _, s := range lc.secondary {
		if offsetsEqual(s.offsets, norm) {
			return s
		}
	}
	if len(lc.secondary) == maxLineAttrs {
		lc.tooComplex = true
		return nil
	}
	s := &secondaryConfig{offsets: norm}
	lc.secondary = append(lc.secondary, s)
	return s
}

// SetDirection sets the direction of all lines.
func (lc *LineConfig) SetDirection(direction LineDirection) *LineConfig {
	lc.primary.direction = direction
	return lc
}

// SetDirectionOffset sets the direction of the line at offset.
func (lc *LineConfig) SetDirectionOffset(direction LineDirection, offset int) *LineConfig {
	return lc.SetDirectionSubset(direction, []int{offset})
}

// SetDirectionSubset sets the direction of the lines at offsets.
func (lc *LineConfig) SetDirectionSubset(direction LineDirection, offsets []int) *LineConfig {
	if s := lc.secondaryFor(offsets); s != nil {
		s.cfg.direction = direction
	}
	return lc
}

// SetEdgeDetection sets the edge detection of all lines.
func (lc *LineConfig) SetEdgeDetection(edge LineEdge) *LineConfig {
	lc.primary.edge = edge
	return lc
}

// SetEdgeDetectionOffset sets the edge detection of the line at offset.
func (lc *LineConfig) SetEdgeDetectionOffset(edge LineEdge, offset int) *LineConfig {
	return lc.SetEdgeDetectionSubset(edge, []int{offset})
}

// SetEdgeDetectionSubset sets the edge detection of the lines at offsets.
func (lc *LineConfig) SetEdgeDetectionSubset(edge LineEdge, offsets []int) *LineConfig {
	if s := lc.secondaryFor(offsets); s != nil {
		s.cfg.edge = edge
	}
	return lc
}

// SetDrive sets the drive of all lines.
func (lc *LineConfig) SetDrive(drive LineDrive) *LineConfig {
	lc.primary.drive = drive
	return lc
}

// SetDriveOffset sets the drive of the line at offset.
func (lc *LineConfig) SetDriveOffset(drive LineDrive, offset int) *LineConfig {
	return lc.SetDriveSubset(drive, []int{offset})
}

// SetDriveSubset sets the drive of the lines at offsets.
func (lc *LineConfig) SetDriveSubset(drive LineDrive, offsets []int) *LineConfig {
	if s := lc.secondaryFor(offsets); s != nil {
		s.cfg.drive = drive
	}
	return lc
}

// SetBias sets the bias of all lines.
func (lc *LineConfig) SetBias(bias LineBias) *LineConfig {
	lc.primary.bias = bias
	return lc
}

// SetBiasOffset sets the bias of the line at offset.
func (lc *LineConfig) SetBiasOffset(bias LineBias, offset int) *LineConfig {
	return lc.SetBiasSubset(bias, []int{offset})
}

// SetBiasSubset sets the bias of the lines at offsets.
func (lc *LineConfig) SetBiasSubset(bias LineBias, offsets []int) *LineConfig {
	if s := lc.secondaryFor(offsets); s != nil {
		s.cfg.bias = bias
	}
	return lc
}

// SetActiveLow marks all lines as active low.
func (lc *LineConfig) SetActiveLow() *LineConfig {
	lc.primary.activeLow = true
	return lc
}

// SetActiveLowOffset marks the line at offset as active low.
func (lc *LineConfig) SetActiveLowOffset(offset int) *LineConfig {
	return lc.SetActiveLowSubset([]int{offset})
}

// SetActiveLowSubset marks the lines at offsets as active low.
func (lc *LineConfig) SetActiveLowSubset(offsets []int) *LineConfig {
	if s := lc.secondaryFor(offsets); s != nil {
		s.cfg.activeLow = true
	}
	return lc
}

// SetActiveHigh marks all lines as active high (the default).
func (lc *LineConfig) SetActiveHigh() *LineConfig {
	lc.primary.activeLow = false
	return lc
}

// SetActiveHighOffset marks the line at offset as active high.
func (lc *LineConfig) SetActiveHighOffset(offset int) *LineConfig {
	return lc.SetActiveHighSubset([]int{offset})
}

// SetActiveHighSubset marks the lines at offsets as active high.
func (lc *LineConfig) SetActiveHighSubset(offsets []int) *LineConfig {
	if s := lc.secondaryFor(offsets); s != nil {
		s.cfg.activeLow = false
	}
	return lc
}

// SetDebouncePeriod sets the debounce period applied to all lines.
//
// A period of zero disables debouncing.
func (lc *LineConfig) SetDebouncePeriod(period time.Duration) *LineConfig {
	lc.primary.debouncePeriod = period
	return lc
}

// SetDebouncePeriodOffset sets the debounce period of the line at offset.
func (lc *LineConfig) SetDebouncePeriodOffset(period time.Duration, offset int) *LineConfig {
	return lc.SetDebouncePeriodSubset(period, []int{offset})
}

// SetDebouncePeriodSubset sets the debounce period of the lines at offsets.
func (lc *LineConfig) SetDebouncePeriodSubset(period time.Duration, offsets []int) *LineConfig {
	if s := lc.secondaryFor(offsets); s != nil {
		s.cfg.debouncePeriod = period
	}
	return lc
}

// SetEventClock sets the event clock source of all lines.
func (lc *LineConfig) SetEventClock(clock LineEventClock) *LineConfig {
	lc.primary.eventClock = clock
	return lc
}

// SetEventClockOffset sets the event clock source of the line at offset.
func (lc *LineConfig) SetEventClockOffset(clock LineEventClock, offset int) *LineConfig {
	return lc.SetEventClockSubset(clock, []int{offset})
}

// SetEventClockSubset sets the event clock source of the lines at offsets.
func (lc *LineConfig) SetEventClockSubset(clock LineEventClock, offsets []int) *LineConfig {
	if s := lc.secondaryFor(offsets); s != nil {
		s.cfg.eventClock = clock
	}
	return lc
}

// SetOutputValue sets the output value to be applied to the line at offset
// when it is requested as an output.
func (lc *LineConfig) SetOutputValue(offset, value int) *LineConfig {
	return lc.SetOutputValues([]int{offset}, []int{value})
}

// SetOutputValues sets the output values to be applied to the lines at
// offsets when they are requested as outputs.
//
// offsets and values must be the same length; surplus values are ignored.
func (lc *LineConfig) SetOutputValues(offsets []int, values []int) *LineConfig {
	if lc.tooComplex {
		return lc
	}
	n := len(offsets)
	if len(values) < n {
		n = len(values)
	}
	for i := 0; i < n; i++ {
		pos := -1
		for j, ov := range lc.outputValues {
			if ov.offset == offsets[i] {
				pos = j
				break
			}
		}
		if pos < 0 {
			if len(lc.outputValues) == uapi.LinesMax {
				lc.tooComplex = true
				return lc
			}
			lc.outputValues = append(lc.outputValues, outputValue{offsets[i], values[i]})
		} else {
			lc.outputValues[pos] = outputValue{offsets[i], values[i]}
		}
	}
	return lc
}

func indexOf(offset int, offsets []int) int {
	for i, o := range offsets {
		if o == offset {
			return i
		}
	}
	return -1
}

// toKernelFlags translates a baseConfig into the kernel's v2 line-flag
// bitfield. Edge detection implies the input direction and clears output.
func toKernelFlags(cfg baseConfig) (uapi.LineFlagV2, error) {
	var flags uapi.LineFlagV2

	switch cfg.direction {
	case LineDirectionInput:
		flags |= uapi.LineFlagV2Input
	case LineDirectionOutput:
		flags |= uapi.LineFlagV2Output
	case LineDirectionAsIs:
	default:
		return 0, unix.EINVAL
	}

	switch cfg.edge {
	case LineEdgeRising:
		flags |= uapi.LineFlagV2EdgeRising | uapi.LineFlagV2Input
		flags &^= uapi.LineFlagV2Output
	case LineEdgeFalling:
		flags |= uapi.LineFlagV2EdgeFalling | uapi.LineFlagV2Input
		flags &^= uapi.LineFlagV2Output
	case LineEdgeBoth:
		flags |= uapi.LineFlagV2EdgeRising | uapi.LineFlagV2EdgeFalling | uapi.LineFlagV2Input
		flags &^= uapi.LineFlagV2Output
	case LineEdgeNone:
	default:
		return 0, unix.EINVAL
	}

	switch cfg.drive {
	case LineDriveOpenDrain:
		flags |= uapi.LineFlagV2OpenDrain
	case LineDriveOpenSource:
		flags |= uapi.LineFlagV2OpenSource
	case LineDrivePushPull:
	default:
		return 0, unix.EINVAL
	}

	switch cfg.bias {
	case LineBiasDisabled:
		flags |= uapi.LineFlagV2BiasDisabled
	case LineBiasPullUp:
		flags |= uapi.LineFlagV2BiasPullUp
	case LineBiasPullDown:
		flags |= uapi.LineFlagV2BiasPullDown
	case LineBiasAsIs:
	default:
		return 0, unix.EINVAL
	}

	if cfg.activeLow {
		flags |= uapi.LineFlagV2ActiveLow
	}

	switch cfg.eventClock {
	case LineEventClockRealtime:
		flags |= uapi.LineFlagV2EventClockRealtime
	case LineEventClockMonotonic:
	default:
		return 0, unix.EINVAL
	}

	return flags, nil
}

func kernelOutputValues(lc *LineConfig, offsets []int) (mask, values uapi.LineBitmap, err error) {
	for _, ov := range lc.outputValues {
		idx := indexOf(ov.offset, offsets)
		if idx < 0 {
			return 0, 0, unix.EINVAL
		}
		mask = mask.Set(idx, 1)
		v := 0
		if ov.value != 0 {
			v = 1
		}
		values = values.Set(idx, v)
	}
	return mask, values, nil
}

func secondaryMask(sec *secondaryConfig, offsets []int) (uapi.LineBitmap, error) {
	var mask uapi.LineBitmap
	for _, o := range sec.offsets {
		idx := indexOf(o, offsets)
		if idx < 0 {
			return 0, unix.EINVAL
		}
		mask = mask.Set(idx, 1)
	}
	return mask, nil
}

// CompileToKernel compiles the accumulated configuration against the
// concrete, ordered offset list used for a request, producing the kernel v2
// line-config wire structure.
//
// The same LineConfig may be compiled against different offset lists.
// Compilation leaves the config unchanged, except that an overflow (too many
// output values or attributes for the offsets given) marks it too complex, so
// every later compilation also fails with unix.E2BIG.
func (lc *LineConfig) CompileToKernel(offsets []int) (uapi.LineConfig, error) {
	var cfgbuf uapi.LineConfig
	numLines := len(offsets)

	if lc.tooComplex {
		return uapi.LineConfig{}, unix.E2BIG
	}

	attrIdx := 0

	if len(lc.outputValues) > 0 {
		if len(lc.outputValues) > numLines {
			lc.tooComplex = true
			return uapi.LineConfig{}, unix.E2BIG
		}
		mask, values, err := kernelOutputValues(lc, offsets)
		if err != nil {
			return uapi.LineConfig{}, err
		}
		var attr uapi.LineAttribute
		attr.Encode64(uapi.LineAttributeIDOutputValues, uint64(values))
		cfgbuf.Attrs[attrIdx] = uapi.LineConfigAttribute{Attr: attr, Mask: mask}
		attrIdx++
	}

	if lc.primary.debouncePeriod > 0 {
		if attrIdx == maxLineAttrs {
			lc.tooComplex = true
			return uapi.LineConfig{}, unix.E2BIG
		}
		attr := uapi.DebouncePeriod(lc.primary.debouncePeriod).Encode()
		cfgbuf.Attrs[attrIdx] = uapi.LineConfigAttribute{
			Attr: attr,
			Mask: uapi.NewLineBitMask(numLines),
		}
		attrIdx++
	}

	for _, sec := range lc.secondary {
		if attrIdx == maxLineAttrs {
			lc.tooComplex = true
			return uapi.LineConfig{}, unix.E2BIG
		}
		if len(sec.offsets) > numLines {
			lc.tooComplex = true
			return uapi.LineConfig{}, unix.E2BIG
		}
		var attr uapi.LineAttribute
		if sec.cfg.debouncePeriod > 0 {
			// A secondary can carry either flags or a debounce period as a
			// single kernel attribute, never both. Debounce wins; any other
			// field set on the same secondary is silently dropped.
			attr = uapi.DebouncePeriod(sec.cfg.debouncePeriod).Encode()
		} else {
			flags, err := toKernelFlags(sec.cfg)
			if err != nil {
				return uapi.LineConfig{}, err
			}
			attr = flags.Encode()
		}
		mask, err := secondaryMask(sec, offsets)
		if err != nil {
			return uapi.LineConfig{}, err
		}
		cfgbuf.Attrs[attrIdx] = uapi.LineConfigAttribute{Attr: attr, Mask: mask}
		attrIdx++
	}

	flags, err := toKernelFlags(lc.primary)
	if err != nil {
		return uapi.LineConfig{}, err
	}
	cfgbuf.Flags = flags
	cfgbuf.NumAttrs = uint32(attrIdx)

	return cfgbuf, nil
}
