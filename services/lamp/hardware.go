// services/lamp/hardware.go
package lamp

import (
	"image/color"

	"pulselamp-go/services/lamp/internal/pulse"
	"pulselamp-go/types"
)

// TouchPads reads the instantaneous touched state of the three pads. Polled
// once per loop tick; level-triggered, so a held pad reads true repeatedly.
type TouchPads interface {
	Read() (pulse.Touch, error)
}

// PixelStrip is the addressable LED output. Fill buffers a uniform color for
// every pixel; Show flushes the buffer to hardware. The fixed hardware
// brightness ceiling lives inside the implementation, not here.
type PixelStrip interface {
	Fill(c color.RGBA)
	Show() error
	Count() int
}

// StatusPin is the plain indicator LED blinked during warm-up.
type StatusPin interface {
	Set(level bool)
}

// Hardware bundles the lamp's peripherals.
type Hardware struct {
	Pads   TouchPads
	Strip  PixelStrip
	Status StatusPin
}

// Provider builds Hardware from a sanitised config. The platform package
// supplies the deployed implementation; tests and the host simulation pass
// closures over fakes.
type Provider func(cfg types.LampConfig) (Hardware, error)
