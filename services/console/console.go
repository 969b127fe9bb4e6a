// services/console/console.go
package console

import (
	"context"
	"io"

	"pulselamp-go/bus"
	"pulselamp-go/types"
	"pulselamp-go/x/conv"
)

// Run mirrors everything published under lamp/# as one line per message on
// w (UART0 on the device, stdout on the host). Telemetry only; nothing is
// written back to the bus.
func Run(ctx context.Context, conn *bus.Connection, w io.Writer) {
	sub := conn.Subscribe(bus.T("lamp", "#"))
	defer conn.Unsubscribe(sub)

	var buf []byte
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			buf = formatLine(buf[:0], m)
			_, _ = w.Write(buf)
		}
	}
}

// formatLine renders "topic key=value ..." without fmt; the hot path must
// not allocate beyond the reused buffer.
func formatLine(buf []byte, m *bus.Message) []byte {
	buf = appendTopic(buf, m.Topic)
	switch p := m.Payload.(type) {
	case types.LampState:
		buf = append(buf, " level="...)
		buf = append(buf, p.Level...)
		if p.Status != "" {
			buf = append(buf, " status="...)
			buf = append(buf, p.Status...)
		}
	case types.SettingsValue:
		buf = append(buf, " hue="...)
		buf = conv.AppendInt(buf, int64(p.Hue))
		buf = append(buf, " cycle_ms="...)
		buf = conv.AppendInt(buf, int64(p.CycleMs))
		buf = append(buf, " max="...)
		buf = conv.AppendInt(buf, int64(p.MaxBrightness))
	case types.TouchEvent:
		buf = append(buf, " pad="...)
		buf = append(buf, p.Pad...)
	case types.Heartbeat:
		buf = append(buf, " uptime_s="...)
		buf = conv.AppendInt(buf, p.UptimeS)
	default:
		// Unknown payloads still show their topic.
	}
	return append(buf, '\n')
}

func appendTopic(buf []byte, t bus.Topic) []byte {
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			buf = append(buf, '/')
		}
		switch v := t.At(i).(type) {
		case string:
			buf = append(buf, v...)
		case int:
			buf = conv.AppendInt(buf, int64(v))
		default:
			buf = append(buf, '?')
		}
	}
	return buf
}
