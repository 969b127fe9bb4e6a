// services/lamp/platform/platform_host.go
//go:build !rp2040 && !rp2350

package platform

import (
	"image/color"
	"io"
	"os"
	"sync"

	"pulselamp-go/services/lamp"
	"pulselamp-go/services/lamp/internal/pulse"
	"pulselamp-go/types"
)

// Provide builds host-side fakes so the full service can run in simulation
// and in tests. The fakes record everything the service does to them.
func Provide(cfg types.LampConfig) (lamp.Hardware, error) {
	return lamp.Hardware{
		Pads:   NewFakePads(),
		Strip:  NewFakeStrip(cfg.Strip.Count),
		Status: NewFakePin(cfg.Status.Pin),
	}, nil
}

// ConsoleWriter returns the host console sink.
func ConsoleWriter() io.Writer { return os.Stdout }

// ----------------------------- Touch (host) -----------------------------------

// FakePads implements lamp.TouchPads with externally settable pad state.
type FakePads struct {
	mu    sync.Mutex
	touch pulse.Touch
	reads int
}

func NewFakePads() *FakePads { return &FakePads{} }

func (p *FakePads) Read() (pulse.Touch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads++
	return p.touch, nil
}

// Set drives one named pad ("color", "speed", "brightness").
func (p *FakePads) Set(pad string, touched bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch pad {
	case types.PadColor:
		p.touch.Color = touched
	case types.PadSpeed:
		p.touch.Speed = touched
	case types.PadBrightness:
		p.touch.Brightness = touched
	}
}

// Release clears all pads.
func (p *FakePads) Release() {
	p.mu.Lock()
	p.touch = pulse.Touch{}
	p.mu.Unlock()
}

// Reads reports how many times the service polled the pads.
func (p *FakePads) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

// ----------------------------- Strip (host) -----------------------------------

// FakeStrip implements lamp.PixelStrip and records fills and flushes.
type FakeStrip struct {
	mu    sync.Mutex
	buf   []color.RGBA
	last  color.RGBA
	shows int
}

func NewFakeStrip(count int) *FakeStrip {
	if count <= 0 {
		count = lamp.DefaultPixelCount
	}
	return &FakeStrip{buf: make([]color.RGBA, count)}
}

func (s *FakeStrip) Fill(c color.RGBA) {
	s.mu.Lock()
	for i := range s.buf {
		s.buf[i] = c
	}
	s.last = c
	s.mu.Unlock()
}

func (s *FakeStrip) Show() error {
	s.mu.Lock()
	s.shows++
	s.mu.Unlock()
	return nil
}

func (s *FakeStrip) Count() int { return len(s.buf) }

// Snapshot returns the last filled color and the flush count.
func (s *FakeStrip) Snapshot() (color.RGBA, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.shows
}

// ----------------------------- Status pin (host) -------------------------------

// FakePin implements lamp.StatusPin and counts rising edges.
type FakePin struct {
	mu     sync.Mutex
	number int
	level  bool
	highs  int
}

func NewFakePin(number int) *FakePin { return &FakePin{number: number} }

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	if level && !p.level {
		p.highs++
	}
	p.level = level
	p.mu.Unlock()
}

func (p *FakePin) Number() int { return p.number }

// State reports the current level and the rising-edge count.
func (p *FakePin) State() (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, p.highs
}
