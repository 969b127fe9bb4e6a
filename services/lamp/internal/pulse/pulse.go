// Package pulse holds the lamp's mutable pulse state and its update rules.
// Everything here is pure and clock-free; the service feeds in touch
// snapshots and elapsed seconds.
package pulse

import (
	"math"

	"pulselamp-go/x/mathx"
)

const (
	// MaxCycleTime is the longest pulse cycle, in seconds (long, slow pulses).
	MaxCycleTime = 10.0
	// MinCycleTime is the shortest pulse cycle, in seconds (fast pulses).
	MinCycleTime = 0.5

	// MaxBrightness is the ceiling of the user-adjustable envelope peak.
	MaxBrightness = 255

	cycleStep = 0.1
)

// Touch is one polled snapshot of the three pads. Pads are level-triggered:
// a held pad reads true on every tick and keeps applying its step.
type Touch struct {
	Color      bool
	Speed      bool
	Brightness bool
}

// Any reports whether any pad is touched.
func (t Touch) Any() bool { return t.Color || t.Speed || t.Brightness }

// State is the whole of the lamp's mutable state. It is owned by exactly one
// loop and passed by pointer into each tick's update step.
type State struct {
	// Hue is the wheel position, always in [1..255]. The color pad advances
	// it one step per touched tick and it wraps back to 1 past 255.
	Hue int

	// Cycle is the pulse period in seconds, bounded to
	// [MinCycleTime..MaxCycleTime]; CycleStep flips sign at each bound.
	Cycle     float64
	CycleStep float64

	// Max is the envelope peak; MaxStep flips sign at each bound.
	Max     int
	MaxStep int

	// Envelope is the time-derived brightness in [0..255]. It persists
	// between ticks so that pad-triggered renders reuse the value from the
	// previous envelope computation.
	Envelope int
}

// Initial returns the power-on state: red, a 2-second cycle about to
// shorten, full peak brightness about to dim, envelope at full.
func Initial() State {
	return State{
		Hue:       1,
		Cycle:     2.0,
		CycleStep: -cycleStep,
		Max:       MaxBrightness,
		MaxStep:   -1,
		Envelope:  255,
	}
}

// BumpHue advances the hue one position, wrapping past the end of the wheel
// back to 1 (never 0, which would collide with the out-of-range guard).
func (s *State) BumpHue() {
	s.Hue++
	if s.Hue > 255 {
		s.Hue = 1
	}
}

// BumpCycle applies one speed-pad step. At either bound the cycle is placed
// one step inside the bound and the step reverses (ping-pong, no hard stop).
func (s *State) BumpCycle() {
	s.Cycle += s.CycleStep
	if s.Cycle > MaxCycleTime {
		s.Cycle = MaxCycleTime - cycleStep
		s.CycleStep = -cycleStep
	} else if s.Cycle < MinCycleTime {
		s.Cycle = MinCycleTime + cycleStep
		s.CycleStep = cycleStep
	}
}

// BumpMax applies one brightness-pad step with the same ping-pong rule.
// The lower bound compares against 10 but corrects to 11, matching the
// deployed firmware exactly.
func (s *State) BumpMax() {
	s.Max += s.MaxStep
	if s.Max > MaxBrightness {
		s.Max = MaxBrightness - 1
		s.MaxStep = -1
	} else if s.Max < 10 {
		s.Max = 11
		s.MaxStep = 1
	}
}

// Envelope maps a sine of elapsed time onto [0..255]. t is seconds since an
// arbitrary epoch; cycle is the period in seconds.
func Envelope(t, cycle float64) int {
	s := math.Sin(t * (2 * math.Pi / cycle))
	return int(mathx.Scale(s, -1.0, 1.0, 0, 255))
}

// Advance recomputes the stored envelope for the given elapsed time. Runs
// unconditionally every tick so the idle pulse stays smooth while a pad is
// held.
func (s *State) Advance(t float64) {
	s.Envelope = Envelope(t, s.Cycle)
}
