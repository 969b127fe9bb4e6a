// bus/bus_test.go
package bus

import (
	"context"
	"testing"
	"time"
)

func expectPayload(t *testing.T, sub *Subscription, want any) {
	t.Helper()
	select {
	case got := <-sub.Channel():
		if got.Payload != want {
			t.Fatalf("expected payload %v, got %v", want, got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for payload %v", want)
	}
}

func expectNoMessage(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case got := <-sub.Channel():
		t.Fatalf("unexpected message %v on %s", got.Payload, sub.Topic().String())
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("config", "lamp"))

	conn.Publish(conn.NewMessage(T("config", "lamp"), "hello", false))
	expectPayload(t, sub, "hello")
}

func TestRetainedMessage(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("lamp", "settings"), "persist", true))

	sub := conn.Subscribe(T("lamp", "settings"))
	expectPayload(t, sub, "persist")
}

func TestRetainedCleared(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("lamp", "settings"), "old", true))
	conn.Publish(conn.NewMessage(T("lamp", "settings"), nil, true))

	sub := conn.Subscribe(T("lamp", "settings"))
	expectNoMessage(t, sub)
}

func TestWildcard_SingleLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	s1 := c.Subscribe(T("lamp", "+", "color"))
	s2 := c.Subscribe(T("lamp", "+", "+"))
	s3 := c.Subscribe(T("lamp", "touch", "+"))
	sNo := c.Subscribe(T("lamp", "+", "speed"))

	c.Publish(c.NewMessage(T("lamp", "touch", "color"), "m1", false))

	expectPayload(t, s1, "m1")
	expectPayload(t, s2, "m1")
	expectPayload(t, s3, "m1")
	expectNoMessage(t, sNo)
}

func TestWildcard_MultiLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	all := c.Subscribe(T("lamp", "#"))

	c.Publish(c.NewMessage(T("lamp", "state"), "m1", false))
	c.Publish(c.NewMessage(T("lamp", "touch", "brightness"), "m2", false))
	c.Publish(c.NewMessage(T("other", "state"), "m3", false))

	expectPayload(t, all, "m1")
	expectPayload(t, all, "m2")
	expectNoMessage(t, all)
}

func TestWildcard_RetainedOnSubscribe(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	c.Publish(c.NewMessage(T("lamp", "settings"), "kept", true))
	c.Publish(c.NewMessage(T("lamp", "state"), "also", true))

	sub := c.Subscribe(T("lamp", "#"))

	got := map[any]bool{}
	for i := 0; i < 2; i++ {
		select {
		case m := <-sub.Channel():
			got[m.Payload] = true
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for retained messages")
		}
	}
	if !got["kept"] || !got["also"] {
		t.Fatalf("missing retained messages, got %v", got)
	}
}

func TestIntTokens(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")

	sub := c.Subscribe(T("lamp", "pixel", 3))
	c.Publish(c.NewMessage(T("lamp", "pixel", 3), "px", false))
	expectPayload(t, sub, "px")

	if s := T("lamp", "pixel", 3).String(); s != "lamp/pixel/3" {
		t.Fatalf("Topic.String() = %q", s)
	}
}

func TestRequestReply(t *testing.T) {
	b := NewBus(4)
	server := b.NewConnection("server")
	client := b.NewConnection("client")

	reqSub := server.Subscribe(T("lamp", "ping"))
	go func() {
		m := <-reqSub.Channel()
		server.Reply(m, "pong", false)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := client.RequestWait(ctx, client.NewMessage(T("lamp", "ping"), nil, false))
	if err != nil {
		t.Fatalf("RequestWait: %v", err)
	}
	if reply.Payload != "pong" {
		t.Fatalf("expected pong, got %v", reply.Payload)
	}
}

func TestDropOldestWhenFull(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")

	sub := c.Subscribe(T("lamp", "touch", "color"))
	for i := 0; i < 5; i++ {
		c.Publish(c.NewMessage(T("lamp", "touch", "color"), i, false))
	}

	// Queue keeps the newest two.
	expectPayload(t, sub, 3)
	expectPayload(t, sub, 4)
}

func TestUnsubscribeIdempotent(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")

	sub := c.Subscribe(T("lamp", "state"))
	c.Unsubscribe(sub)
	c.Unsubscribe(sub) // must not panic

	c.Publish(c.NewMessage(T("lamp", "state"), "x", false))
	if _, ok := <-sub.Channel(); ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
}
