// cmd/lamptest/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"pulselamp-go/bus"
	"pulselamp-go/services/console"
	"pulselamp-go/services/lamp"
	"pulselamp-go/services/lamp/platform"
	"pulselamp-go/types"
)

// ---------- Configuration ----------

const (
	warmupMs = 1000
	blinkMs  = 100

	padHold   = 300 * time.Millisecond
	idleWatch = 2 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(64)

	pads := platform.NewFakePads()
	strip := platform.NewFakeStrip(lamp.DefaultPixelCount)
	pin := platform.NewFakePin(25)

	go console.Run(ctx, b.NewConnection("console"), os.Stdout)
	go lamp.Run(ctx, b.NewConnection("lamp"), func(types.LampConfig) (lamp.Hardware, error) {
		return lamp.Hardware{Pads: pads, Strip: strip, Status: pin}, nil
	})

	ui := b.NewConnection("ui")
	ui.Publish(ui.NewMessage(bus.T("config", "lamp"), types.LampConfig{
		WarmupMs: warmupMs,
		BlinkMs:  blinkMs,
	}, true))

	// Wait out the warm-up blink, then hold each pad in turn.
	time.Sleep(warmupMs*time.Millisecond + 200*time.Millisecond)
	_, highs := pin.State()
	fmt.Printf("warm-up done, status LED blinked %d times\n", highs)

	for _, pad := range []string{types.PadColor, types.PadSpeed, types.PadBrightness} {
		fmt.Printf("--- holding %s pad for %v\n", pad, padHold)
		pads.Set(pad, true)
		time.Sleep(padHold)
		pads.Set(pad, false)
		showFrame(strip)
	}

	fmt.Println("--- idle pulse")
	start := time.Now()
	for time.Since(start) < idleWatch {
		time.Sleep(200 * time.Millisecond)
		showFrame(strip)
	}
}

func showFrame(strip *platform.FakeStrip) {
	c, shows := strip.Snapshot()
	fmt.Printf("frame rgb=(%d,%d,%d) flushes=%d\n", c.R, c.G, c.B, shows)
}
