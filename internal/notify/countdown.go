package notify

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CountdownDuration is how long a merchant has to pack an accepted order.
const CountdownDuration = 5 * time.Minute

const tickInterval = time.Second

// Remaining = max(0, CountdownDuration - (now - acceptedAt)). Selalu dihitung ulang
// dari acceptedAt, bukan dari nilai tersimpan.
func Remaining(acceptedAt, now time.Time) time.Duration {
	r := CountdownDuration - now.Sub(acceptedAt)
	if r < 0 {
		return 0
	}
	if r > CountdownDuration {
		// jam lokal di belakang server
		return CountdownDuration
	}
	return r
}

// Format renders M:SS, minutes unpadded.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

type countdown struct {
	acceptedAt time.Time
	remaining  time.Duration
}

// Countdowns tracks one entry per accepted order, all driven by a single shared tick.
type Countdowns struct {
	now      func() time.Time
	onExpire func(orderID string)

	mu      sync.Mutex
	entries map[string]*countdown
}

func NewCountdowns(now func() time.Time, onExpire func(orderID string)) *Countdowns {
	if now == nil {
		now = time.Now
	}
	return &Countdowns{now: now, onExpire: onExpire, entries: map[string]*countdown{}}
}

// Start (re)arms the countdown for orderID. When nothing is left no entry is
// created and 0 is returned: the order renders as expired right away.
func (c *Countdowns) Start(orderID string, acceptedAt time.Time) time.Duration {
	rem := Remaining(acceptedAt, c.now())

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, orderID)
	if rem == 0 {
		return 0
	}
	c.entries[orderID] = &countdown{acceptedAt: acceptedAt, remaining: rem}
	return rem
}

// Cancel is a no-op for unknown ids.
func (c *Countdowns) Cancel(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[orderID]
	delete(c.entries, orderID)
	return ok
}

func (c *Countdowns) Remaining(orderID string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[orderID]
	if !ok {
		return 0, false
	}
	return e.remaining, true
}

func (c *Countdowns) Running(orderID string) bool {
	_, ok := c.Remaining(orderID)
	return ok
}

func (c *Countdowns) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Tick recomputes every entry and retires the expired ones.
func (c *Countdowns) Tick() []string {
	now := c.now()

	c.mu.Lock()
	var expired []string
	for id, e := range c.entries {
		e.remaining = Remaining(e.acceptedAt, now)
		if e.remaining == 0 {
			expired = append(expired, id)
			delete(c.entries, id)
		}
	}
	c.mu.Unlock()

	if c.onExpire != nil {
		for _, id := range expired {
			c.onExpire(id)
		}
	}
	return expired
}

func (c *Countdowns) StopAll() {
	c.mu.Lock()
	c.entries = map[string]*countdown{}
	c.mu.Unlock()
}

// Run ticks once per second until ctx is done, then drops every entry.
func (c *Countdowns) Run(ctx context.Context) {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	defer c.StopAll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Tick()
		}
	}
}
