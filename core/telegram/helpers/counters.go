package helpers

import (
	"context"
	"sync/atomic"
)

type countersKey struct{}

// Counters tracks the messages sent while handling one update.
type Counters struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

// Messages returns the number of messages sent so far.
func (c *Counters) Messages() int {
	if c == nil {
		return 0
	}
	return int(c.messages.Load())
}

// Keyboard reports whether any sent message carried a keyboard.
func (c *Counters) Keyboard() bool {
	return c != nil && c.keyboard.Load()
}

// WithCounters attaches a fresh Counters to ctx.
func WithCounters(ctx context.Context) (context.Context, *Counters) {
	c := &Counters{}
	return context.WithValue(ctx, countersKey{}, c), c
}

// CountersFrom returns the Counters attached to ctx, or nil.
func CountersFrom(ctx context.Context) *Counters {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(countersKey{}).(*Counters)
	return c
}

// CountSent records one outbound message on the counters in ctx, if any.
func CountSent(ctx context.Context, withKeyboard bool) {
	c := CountersFrom(ctx)
	if c == nil {
		return
	}
	c.messages.Add(1)
	if withKeyboard {
		c.keyboard.Store(true)
	}
}
