package heartbeat

import (
	"context"
	"time"

	"pulselamp-go/bus"
	"pulselamp-go/types"
	"pulselamp-go/x/timex"
)

const defaultInterval = 30 * time.Second

// Run publishes a retained uptime heartbeat on lamp/heartbeat until ctx is
// cancelled. The interval can be changed at runtime via config/heartbeat
// ({"interval": <seconds>}).
func Run(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(bus.T("config", "heartbeat"))
	defer conn.Unsubscribe(cfgSub)

	start := time.Now()
	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			conn.Publish(conn.NewMessage(bus.T("lamp", "heartbeat"), types.Heartbeat{
				UptimeS: int64(time.Since(start).Seconds()),
				TSms:    timex.NowMs(),
			}, true))
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			if d, ok := interval(msg.Payload); ok {
				tick.Reset(d)
			}
		}
	}
}

func interval(p any) (time.Duration, bool) {
	m, ok := p.(map[string]any)
	if !ok {
		return 0, false
	}
	secs, ok := m["interval"].(float64)
	if !ok || secs <= 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
