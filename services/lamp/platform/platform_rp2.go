// services/lamp/platform/platform_rp2.go
//go:build rp2040 || rp2350

package platform

import (
	"image/color"
	"io"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/mpr121"
	"tinygo.org/x/drivers/ws2812"

	"pulselamp-go/errcode"
	"pulselamp-go/services/lamp"
	"pulselamp-go/services/lamp/internal/pulse"
	"pulselamp-go/types"
)

// Provide configures the deployed RP2 hardware: a WS2812 ring on a GPIO, an
// MPR121 touch controller on i2c0 default pins, and a plain status LED.
func Provide(cfg types.LampConfig) (lamp.Hardware, error) {
	if cfg.Strip.Pin < 0 || cfg.Strip.Pin > 28 || cfg.Status.Pin < 0 || cfg.Status.Pin > 28 {
		return lamp.Hardware{}, errcode.UnknownPin
	}

	status := machine.Pin(cfg.Status.Pin)
	status.Configure(machine.PinConfig{Mode: machine.PinOutput})
	status.Set(false)

	data := machine.Pin(cfg.Strip.Pin)
	data.Configure(machine.PinConfig{Mode: machine.PinOutput})
	strip := &rp2Strip{
		dev:   ws2812.New(data),
		buf:   make([]color.RGBA, cfg.Strip.Count),
		scale: brightnessScale(cfg.Strip.Brightness),
	}

	if err := machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		return lamp.Hardware{}, &errcode.E{C: errcode.UnknownBus, Op: "i2c0.configure", Err: err}
	}

	addr := cfg.Touch.Addr
	if addr == 0 {
		addr = mpr121.DefaultAddress
	}
	touch := mpr121.New(machine.I2C0)
	if err := touch.Configure(mpr121.Config{
		Address:          addr,
		TouchThreshold:   cfg.Touch.TouchThreshold,
		ReleaseThreshold: cfg.Touch.ReleaseThreshold,
		AutoConfig:       true,
	}); err != nil {
		return lamp.Hardware{}, &errcode.E{C: errcode.TouchFault, Op: "mpr121.configure", Err: err}
	}

	return lamp.Hardware{
		Pads: &rp2Pads{
			dev:        touch,
			color:      cfg.Touch.ColorChannel,
			speed:      cfg.Touch.SpeedChannel,
			brightness: cfg.Touch.BrightnessChannel,
		},
		Strip:  strip,
		Status: &rp2Pin{p: status},
	}, nil
}

// ConsoleWriter configures UART0 on the board-default pins for telemetry.
func ConsoleWriter() io.Writer {
	_ = uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	return uartx.UART0
}

// ----------------------------- Touch (MPR121) ----------------------------------

type rp2Pads struct {
	dev        mpr121.Device
	color      uint8
	speed      uint8
	brightness uint8
}

func (p *rp2Pads) Read() (pulse.Touch, error) {
	st, err := p.dev.Status()
	if err != nil {
		return pulse.Touch{}, &errcode.E{C: errcode.TouchFault, Op: "mpr121.status", Err: err}
	}
	return pulse.Touch{
		Color:      st.Touched(p.color),
		Speed:      st.Touched(p.speed),
		Brightness: st.Touched(p.brightness),
	}, nil
}

// ----------------------------- Strip (WS2812) ----------------------------------

type rp2Strip struct {
	dev   ws2812.Device
	buf   []color.RGBA
	scale uint32 // fixed hardware ceiling, 0..256
}

// brightnessScale converts the 0..1 config ceiling to an integer multiplier.
func brightnessScale(b float32) uint32 {
	if b <= 0 {
		return 0
	}
	if b >= 1 {
		return 256
	}
	return uint32(b * 256)
}

func (s *rp2Strip) Fill(c color.RGBA) {
	// Apply the hardware ceiling here so the logical RGB values stay
	// untouched upstream.
	c = color.RGBA{
		R: uint8(uint32(c.R) * s.scale >> 8),
		G: uint8(uint32(c.G) * s.scale >> 8),
		B: uint8(uint32(c.B) * s.scale >> 8),
		A: c.A,
	}
	for i := range s.buf {
		s.buf[i] = c
	}
}

func (s *rp2Strip) Show() error {
	if err := s.dev.WriteColors(s.buf); err != nil {
		return &errcode.E{C: errcode.StripFault, Op: "ws2812.write", Err: err}
	}
	return nil
}

func (s *rp2Strip) Count() int { return len(s.buf) }

// ----------------------------- Status pin --------------------------------------

type rp2Pin struct{ p machine.Pin }

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
