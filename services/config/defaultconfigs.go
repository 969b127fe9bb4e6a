package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgLampRP2040 = `{
  "lamp": {
    "strip": {"pin": 6, "count": 10, "brightness": 0.7},
    "touch": {"color_channel": 0, "speed_channel": 1, "brightness_channel": 2},
    "status": {"pin": 25}
  },
  "heartbeat": {
    "interval": 30
  }
}`

var embeddedConfigs = map[string][]byte{
	"lamp-rp2040": []byte(cfgLampRP2040),
}
