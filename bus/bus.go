// bus.go
package bus

import (
	"context"
	"sync"

	"pulselamp-go/x/conv"
)

// -----------------------------------------------------------------------------
// Tokens + Topics
// -----------------------------------------------------------------------------

// Token is a single element in a topic path: a string or an int.
type Token = any

// Wildcard tokens, usable in subscription topics only.
const (
	WildOne = "+" // matches exactly one token
	WildAny = "#" // matches the whole remainder; must be last
)

// Topic is an immutable sequence of tokens.
type Topic struct {
	toks []Token
}

// T builds a topic from tokens.
func T(tokens ...Token) Topic { return Topic{toks: tokens} }

func (t Topic) Len() int { return len(t.toks) }

func (t Topic) At(i int) Token {
	if i < 0 || i >= len(t.toks) {
		return nil
	}
	return t.toks[i]
}

// Append returns a new topic with extra tokens; the receiver is not mutated.
func (t Topic) Append(tokens ...Token) Topic {
	out := make([]Token, 0, len(t.toks)+len(tokens))
	out = append(out, t.toks...)
	out = append(out, tokens...)
	return Topic{toks: out}
}

// String renders the topic slash-joined, for diagnostics.
func (t Topic) String() string {
	var b []byte
	for i, tok := range t.toks {
		if i > 0 {
			b = append(b, '/')
		}
		switch v := tok.(type) {
		case string:
			b = append(b, v...)
		case int:
			b = conv.AppendInt(b, int64(v))
		default:
			b = append(b, '?')
		}
	}
	return string(b)
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// CanReply reports whether the publisher asked for a reply.
func (m *Message) CanReply() bool { return m.ReplyTo.Len() > 0 }

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic  Topic
	ch     chan *Message
	conn   *Connection
	closed bool
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

type node struct {
	children map[Token]*node
	subs     []*Subscription
	retained *Message
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.RWMutex
	root *node
	qLen int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{
		root: &node{},
		qLen: queueLen,
	}
}

// addSubscription inserts a subscription pattern into the trie and delivers
// any retained messages the pattern matches.
func (b *Bus) addSubscription(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range topic.toks {
		if n.children == nil {
			n.children = make(map[Token]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	var retained []*Message
	collectRetained(b.root, topic.toks, &retained)
	for _, msg := range retained {
		deliver(sub, msg)
	}
}

// Publish delivers a message to all subscribers whose pattern matches its
// topic, then stores or clears the retained copy at the exact path.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var targets []*Subscription
	match(b.root, msg.Topic.toks, &targets)
	for _, sub := range targets {
		deliver(sub, msg)
	}

	if !msg.Retained {
		return
	}
	n := b.root
	for _, tok := range msg.Topic.toks {
		if n.children == nil {
			n.children = make(map[Token]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	if msg.Payload == nil {
		n.retained = nil
	} else {
		n.retained = msg
	}
}

// deliver is non-blocking: when a queue is full the oldest message is dropped.
func deliver(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
	default:
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// match walks the subscription trie against a concrete published topic.
func match(n *node, toks []Token, out *[]*Subscription) {
	if n == nil {
		return
	}
	if len(toks) == 0 {
		*out = append(*out, n.subs...)
		// "a/#" also matches "a".
		if n.children != nil {
			if rest, ok := n.children[Token(WildAny)]; ok {
				*out = append(*out, rest.subs...)
			}
		}
		return
	}
	if n.children == nil {
		return
	}
	if child, ok := n.children[toks[0]]; ok {
		match(child, toks[1:], out)
	}
	if child, ok := n.children[Token(WildOne)]; ok {
		match(child, toks[1:], out)
	}
	if rest, ok := n.children[Token(WildAny)]; ok {
		*out = append(*out, rest.subs...)
	}
}

// collectRetained walks the retained tree against a subscription pattern.
func collectRetained(n *node, pat []Token, out *[]*Message) {
	if n == nil {
		return
	}
	if len(pat) == 0 {
		if n.retained != nil {
			*out = append(*out, n.retained)
		}
		return
	}
	if s, ok := pat[0].(string); ok && s == WildAny {
		allRetained(n, out)
		return
	}
	if n.children == nil {
		return
	}
	if s, ok := pat[0].(string); ok && s == WildOne {
		for _, child := range n.children {
			collectRetained(child, pat[1:], out)
		}
		return
	}
	if child, ok := n.children[pat[0]]; ok {
		collectRetained(child, pat[1:], out)
	}
}

func allRetained(n *node, out *[]*Message) {
	if n.retained != nil {
		*out = append(*out, n.retained)
	}
	for _, child := range n.children {
		allRetained(child, out)
	}
}

// unsubscribe removes a subscription from the trie and prunes empty nodes.
func (b *Bus) unsubscribe(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, tok := range topic.toks {
		if n.children == nil {
			return
		}
		child, ok := n.children[tok]
		if !ok {
			return
		}
		stack = append(stack, n)
		n = child
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}

	for i := len(topic.toks) - 1; i >= 0; i-- {
		parent := stack[i]
		key := topic.toks[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus     *Bus
	subs    []*Subscription
	mu      sync.Mutex
	id      string
	nextSeq int
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{
		bus: b,
		id:  id,
	}
}

// NewMessage builds a message for Publish.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.addSubscription(topic, sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	if sub.closed {
		c.mu.Unlock()
		return
	}
	sub.closed = true
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.bus.unsubscribe(sub.topic, sub)
	close(sub.ch)
}

// Reply answers a request on its ReplyTo topic; no-op when none was given.
func (c *Connection) Reply(req *Message, payload any, retained bool) {
	if !req.CanReply() {
		return
	}
	c.bus.Publish(&Message{Topic: req.ReplyTo, Payload: payload, Retained: retained})
}

// RequestWait publishes msg with a private ReplyTo topic and blocks until a
// reply arrives or the context is cancelled.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	replyTo := T("reply", c.id, seq)
	sub := c.Subscribe(replyTo)
	defer c.Unsubscribe(sub)

	msg.ReplyTo = replyTo
	c.bus.Publish(msg)

	select {
	case m := <-sub.ch:
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	for _, sub := range subs {
		sub.closed = true
	}
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub.topic, sub)
		close(sub.ch)
	}
}
