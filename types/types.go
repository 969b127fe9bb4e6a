package types

// ------------------------
// Lamp state (retained)
// ------------------------

type LampState struct {
	Level  string `json:"level"`  // "idle", "warming_up", "ready", "stopped", "error"
	Status string `json:"status"` // freeform short code
	TSms   int64  `json:"ts_ms"`
}

// SettingsValue is published retained on lamp/settings whenever a touch pad
// changes one of the three user-adjustable values.
type SettingsValue struct {
	Hue           int    `json:"hue"`            // 1..255 hue wheel position
	CycleMs       uint32 `json:"cycle_ms"`       // pulse cycle length
	MaxBrightness int    `json:"max_brightness"` // peak of the pulse envelope
}

// TouchEvent is published (non-retained) on lamp/touch/<pad> for every loop
// tick in which that pad reads touched. Pads are level-triggered.
type TouchEvent struct {
	Pad  string `json:"pad"` // "color", "speed", "brightness"
	TSms int64  `json:"ts_ms"`
}

// Heartbeat is published retained on lamp/heartbeat at the configured
// interval so an attached console can tell a hung device from a quiet one.
type Heartbeat struct {
	UptimeS int64 `json:"uptime_s"`
	TSms    int64 `json:"ts_ms"`
}

// Pad names used in topics and events.
const (
	PadColor      = "color"
	PadSpeed      = "speed"
	PadBrightness = "brightness"
)

// ------------------------
// Lamp configuration
// ------------------------

// LampConfig is supplied retained on the "config/lamp" bus topic. Zero
// values select the deployed defaults; the service sanitises before use.
type LampConfig struct {
	Strip    StripParams  `json:"strip"`
	Touch    TouchParams  `json:"touch"`
	Status   StatusParams `json:"status"`
	WarmupMs uint32       `json:"warmup_ms,omitempty"` // 0 => 5000
	BlinkMs  uint32       `json:"blink_ms,omitempty"`  // 0 => 500
}

// StripParams describes the addressable LED output.
type StripParams struct {
	Pin   int `json:"pin"`
	Count int `json:"count,omitempty"` // 0 => 10
	// Brightness is the fixed hardware ceiling (0..1) applied uniformly by
	// the output shim, independent of the logical per-pixel RGB values.
	Brightness float32 `json:"brightness,omitempty"` // 0 => 0.7
}

// TouchParams describes the capacitive-touch controller and the channel each
// pad is wired to.
type TouchParams struct {
	Addr             uint8 `json:"addr,omitempty"` // 0 => controller default
	TouchThreshold   uint8 `json:"touch_threshold,omitempty"`
	ReleaseThreshold uint8 `json:"release_threshold,omitempty"`

	ColorChannel      uint8 `json:"color_channel"`
	SpeedChannel      uint8 `json:"speed_channel"`
	BrightnessChannel uint8 `json:"brightness_channel"`
}

// StatusParams describes the plain status LED blinked during warm-up.
type StatusParams struct {
	Pin int `json:"pin"`
}
