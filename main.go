package main

import (
	"context"
	"time"

	"pulselamp-go/bus"
	"pulselamp-go/services/config"
	"pulselamp-go/services/console"
	"pulselamp-go/services/heartbeat"
	"pulselamp-go/services/lamp"
	"pulselamp-go/services/lamp/platform"
)

// Deployed device ID; selects the embedded config (WS2812 ring data on GP6,
// onboard status LED on GP25, MPR121 touch channels 0..2 on the i2c0 pins).
const deviceID = "lamp-rp2040"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, deviceID)
	b := bus.NewBus(16)

	go console.Run(ctx, b.NewConnection("console"), platform.ConsoleWriter())
	go heartbeat.Run(ctx, b.NewConnection("heartbeat"))
	go lamp.Run(ctx, b.NewConnection("lamp"), platform.Provide)
	config.Start(ctx, b.NewConnection("config"))

	// The lamp runs until power-off; there is no shutdown path.
	select {}
}
