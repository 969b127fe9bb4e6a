// services/lamp/lamp.go
package lamp

import (
	"context"
	"encoding/json"
	"time"

	"pulselamp-go/bus"
	"pulselamp-go/errcode"
	"pulselamp-go/services/lamp/internal/pulse"
	"pulselamp-go/services/lamp/internal/wheel"
	"pulselamp-go/types"
	"pulselamp-go/x/mathx"
	"pulselamp-go/x/timex"
)

// Deployed defaults, applied for zero-valued config fields.
const (
	DefaultPixelCount   = 10
	DefaultHWBrightness = 0.7

	defaultWarmupMs = 5000
	defaultBlinkMs  = 500

	defaultTouchThreshold   = 0x10
	defaultReleaseThreshold = 0x05
)

// -----------------------------------------------------------------------------
// Entry point
// -----------------------------------------------------------------------------

// Run waits for a LampConfig on config/lamp, builds the hardware, performs
// the warm-up blink, then drives the pulse loop until ctx is cancelled or a
// hardware fault ends the process. Faults are fatal and unrecovered.
func Run(ctx context.Context, conn *bus.Connection, provide Provider) {
	s := &service{conn: conn, provide: provide, st: pulse.Initial()}
	s.run(ctx)
}

type service struct {
	conn    *bus.Connection
	provide Provider
	cfg     types.LampConfig
	hw      Hardware

	st    pulse.State
	epoch time.Time
	last  types.SettingsValue
}

// -----------------------------------------------------------------------------
// Main loop
// -----------------------------------------------------------------------------

func (s *service) run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(bus.T("config", "lamp"))
	defer s.conn.Unsubscribe(cfgSub)

	s.publishState("idle", "awaiting_config")

	select {
	case <-ctx.Done():
		s.publishState("stopped", "context_cancelled")
		return
	case msg := <-cfgSub.Channel():
		cfg, err := decodeConfig(msg.Payload)
		if err != nil {
			s.publishState("error", string(errcode.InvalidPayload))
			return
		}
		s.cfg = sanitize(cfg)
	}

	hw, err := s.provide(s.cfg)
	if err != nil {
		s.publishState("error", string(errcode.Of(err)))
		return
	}
	s.hw = hw

	// Keep the board undisturbed while the touch controller baselines
	// itself; blink the status LED so the wait is visible.
	s.publishState("warming_up", "touch_baseline")
	if !s.warmup(ctx) {
		s.publishState("stopped", "context_cancelled")
		return
	}

	s.epoch = time.Now()
	if err := s.render(); err != nil {
		s.publishState("error", string(errcode.Of(err)))
		return
	}
	s.publishState("ready", "pulsing")
	s.publishSettings()

	// Unbounded polling loop; iteration rate is bounded only by the touch
	// read and strip flush latency.
	for {
		select {
		case <-ctx.Done():
			s.publishState("stopped", "context_cancelled")
			return
		default:
		}
		if err := s.tick(time.Now()); err != nil {
			s.publishState("error", string(errcode.Of(err)))
			return
		}
	}
}

// tick performs one loop iteration: poll the pads, apply their steps
// (rendering immediately for the pads whose effect must be visible while the
// touch is held), then recompute the time envelope and render again. The
// second render folds elapsed time into whatever a touch just changed, so
// releasing a pad never produces a brightness jump.
func (s *service) tick(now time.Time) error {
	t, err := s.hw.Pads.Read()
	if err != nil {
		return &errcode.E{C: errcode.TouchFault, Op: "pads.read", Err: err}
	}

	if t.Color {
		s.st.BumpHue()
		s.emitTouch(types.PadColor)
		if err := s.render(); err != nil {
			return err
		}
	}
	if t.Speed {
		// Cycle length has no visible effect until the next envelope
		// computation, so no immediate render here.
		s.st.BumpCycle()
		s.emitTouch(types.PadSpeed)
	}
	if t.Brightness {
		s.st.BumpMax()
		s.emitTouch(types.PadBrightness)
		if err := s.render(); err != nil {
			return err
		}
	}

	s.st.Advance(timex.Seconds(now.Sub(s.epoch)))
	if err := s.render(); err != nil {
		return err
	}

	if t.Any() {
		s.publishSettings()
	}
	return nil
}

func (s *service) render() error {
	c := wheel.Wheel(s.st.Hue, s.st.Envelope, s.st.Max)
	s.hw.Strip.Fill(c)
	if err := s.hw.Strip.Show(); err != nil {
		return &errcode.E{C: errcode.StripFault, Op: "strip.show", Err: err}
	}
	return nil
}

// warmup blinks the status LED for the configured window. Returns false when
// ctx was cancelled mid-blink. The LED is left low afterwards.
func (s *service) warmup(ctx context.Context) bool {
	warm := time.Duration(s.cfg.WarmupMs) * time.Millisecond
	blink := time.Duration(s.cfg.BlinkMs) * time.Millisecond
	start := time.Now()
	for time.Since(start) <= warm {
		s.hw.Status.Set(true)
		if !sleepCtx(ctx, blink) {
			return false
		}
		s.hw.Status.Set(false)
		if !sleepCtx(ctx, blink) {
			return false
		}
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// -----------------------------------------------------------------------------
// Telemetry
// -----------------------------------------------------------------------------

func (s *service) publishState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(bus.T("lamp", "state"),
		types.LampState{Level: level, Status: status, TSms: timex.NowMs()}, true))
}

func (s *service) publishSettings() {
	v := types.SettingsValue{
		Hue:           s.st.Hue,
		CycleMs:       uint32(s.st.Cycle * 1000),
		MaxBrightness: s.st.Max,
	}
	if v == s.last {
		return
	}
	s.last = v
	s.conn.Publish(s.conn.NewMessage(bus.T("lamp", "settings"), v, true))
}

func (s *service) emitTouch(pad string) {
	s.conn.Publish(s.conn.NewMessage(bus.T("lamp", "touch", pad),
		types.TouchEvent{Pad: pad, TSms: timex.NowMs()}, false))
}

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// decodeConfig accepts either an in-process LampConfig or a decoded JSON
// object as published by the config service.
func decodeConfig(p any) (types.LampConfig, error) {
	var cfg types.LampConfig
	switch v := p.(type) {
	case types.LampConfig:
		return v, nil
	case []byte:
		if err := json.Unmarshal(v, &cfg); err != nil {
			return cfg, err
		}
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return cfg, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, &errcode.E{C: errcode.InvalidPayload, Op: "config.decode"}
	}
	return cfg, nil
}

func sanitize(cfg types.LampConfig) types.LampConfig {
	if cfg.Strip.Count == 0 {
		cfg.Strip.Count = DefaultPixelCount
	}
	cfg.Strip.Count = mathx.Clamp(cfg.Strip.Count, 1, 1024)
	if cfg.Strip.Brightness == 0 {
		cfg.Strip.Brightness = DefaultHWBrightness
	}
	cfg.Strip.Brightness = mathx.Clamp(cfg.Strip.Brightness, 0.05, 1.0)
	if cfg.WarmupMs == 0 {
		cfg.WarmupMs = defaultWarmupMs
	}
	if cfg.BlinkMs == 0 {
		cfg.BlinkMs = defaultBlinkMs
	}
	if cfg.Touch.TouchThreshold == 0 {
		cfg.Touch.TouchThreshold = defaultTouchThreshold
	}
	if cfg.Touch.ReleaseThreshold == 0 {
		cfg.Touch.ReleaseThreshold = defaultReleaseThreshold
	}
	return cfg
}
