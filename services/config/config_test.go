package config

import (
	"context"
	"testing"
	"time"

	"pulselamp-go/bus"
)

func TestPublishConfig_PublishesEachKeyRetained(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("config")

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "lamp-rp2040")
	if err := PublishConfig(ctx, conn); err != nil {
		t.Fatalf("PublishConfig: %v", err)
	}

	// Retained messages must reach a late subscriber.
	sub := b.NewConnection("lamp").Subscribe(bus.T("config", "lamp"))
	select {
	case msg := <-sub.Channel():
		m, ok := msg.Payload.(map[string]any)
		if !ok {
			t.Fatalf("payload type %T, want map", msg.Payload)
		}
		strip, ok := m["strip"].(map[string]any)
		if !ok {
			t.Fatalf("missing strip section in %v", m)
		}
		if pin, _ := strip["pin"].(float64); pin != 6 {
			t.Fatalf("strip.pin = %v, want 6", strip["pin"])
		}
	case <-time.After(time.Second):
		t.Fatal("retained config/lamp never delivered")
	}

	hb := b.NewConnection("hb").Subscribe(bus.T("config", "heartbeat"))
	select {
	case msg := <-hb.Channel():
		m, _ := msg.Payload.(map[string]any)
		if iv, _ := m["interval"].(float64); iv != 30 {
			t.Fatalf("heartbeat interval = %v, want 30", m["interval"])
		}
	case <-time.After(time.Second):
		t.Fatal("retained config/heartbeat never delivered")
	}
}

func TestPublishConfig_MissingDevice(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("config")

	if err := PublishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error for missing device ID")
	}
	ctx := context.WithValue(context.Background(), CtxDeviceKey, "no-such-device")
	if err := PublishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for unknown device ID")
	}
}

func TestPublishConfig_LookupOverride(t *testing.T) {
	orig := EmbeddedConfigLookup
	defer func() { EmbeddedConfigLookup = orig }()
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		return []byte(`{"lamp": {"warmup_ms": 100}}`), true
	}

	b := bus.NewBus(16)
	ctx := context.WithValue(context.Background(), CtxDeviceKey, "anything")
	if err := PublishConfig(ctx, b.NewConnection("config")); err != nil {
		t.Fatalf("PublishConfig: %v", err)
	}

	sub := b.NewConnection("lamp").Subscribe(bus.T("config", "lamp"))
	select {
	case msg := <-sub.Channel():
		m, _ := msg.Payload.(map[string]any)
		if v, _ := m["warmup_ms"].(float64); v != 100 {
			t.Fatalf("warmup_ms = %v, want 100", m["warmup_ms"])
		}
	case <-time.After(time.Second):
		t.Fatal("overridden config never delivered")
	}
}
