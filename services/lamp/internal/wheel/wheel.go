// Package wheel maps a hue position plus a brightness pair onto the classic
// red→green→blue→red color wheel.
package wheel

import (
	"image/color"

	"pulselamp-go/x/mathx"
)

// Wheel converts a wheel position in [0..255] into an RGB color. brightness
// is first rescaled into [0..max], so the returned channels never exceed
// max. Positions outside the wheel return black.
//
// The three 85-wide bands each interpolate two channels linearly and hold
// the third at zero; channel values truncate, matching the device's
// integer-per-channel output.
func Wheel(pos, brightness, max int) color.RGBA {
	if pos < 0 || pos > 255 {
		return color.RGBA{A: 0xff}
	}

	scaled := float64(int(mathx.Scale(float64(brightness), 0, 255, 0, float64(max))))

	var r, g, b int
	switch {
	case pos < 85:
		r = int(mathx.Scale(float64(255-pos*3), 0, 255, 0, scaled))
		g = int(mathx.Scale(float64(pos*3), 0, 255, 0, scaled))
	case pos < 170:
		pos -= 85
		g = int(mathx.Scale(float64(255-pos*3), 0, 255, 0, scaled))
		b = int(mathx.Scale(float64(pos*3), 0, 255, 0, scaled))
	default:
		pos -= 170
		r = int(mathx.Scale(float64(pos*3), 0, 255, 0, scaled))
		b = int(mathx.Scale(float64(255-pos*3), 0, 255, 0, scaled))
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}
}
