package testutil

import (
	"sort"
	"sync"
	"time"

	"adisyon-backend/internal/clock"
)

// FakeClock: elle ilerletilen saat. Advance vadesi gelen zamanlayıcıları
// sırayla ve kilit dışında çalıştırır.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers map[int]*fakeTimer
}

type fakeTimer struct {
	c   *FakeClock
	id  int
	at  time.Time
	fn  func()
	hit bool
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start, timers: map[int]*fakeTimer{}}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{c: c, id: c.seq, at: c.now.Add(d), fn: f}
	c.timers[t.id] = t
	return t
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.hit {
		return false
	}
	if _, ok := t.c.timers[t.id]; !ok {
		return false
	}
	delete(t.c.timers, t.id)
	return true
}

// Advance: saati d kadar ilerletir. Callback içinde kurulan ve pencereye düşen
// zamanlayıcılar da aynı çağrıda çalışır.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due *fakeTimer
		for _, t := range c.timers {
			if t.at.After(target) {
				continue
			}
			if due == nil || t.at.Before(due.at) || (t.at.Equal(due.at) && t.id < due.id) {
				due = t
			}
		}
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		delete(c.timers, due.id)
		due.hit = true
		if due.at.After(c.now) {
			c.now = due.at
		}
		c.mu.Unlock()

		due.fn()
	}
}

// Pending: bekleyen zamanlayıcı sayısı
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// PendingDurations: bekleyen zamanlayıcıların şimdiden uzaklığı, küçükten büyüğe
func (c *FakeClock) PendingDurations() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, 0, len(c.timers))
	for _, t := range c.timers {
		out = append(out, t.at.Sub(c.now))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
