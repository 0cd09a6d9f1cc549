package terminalsync

import (
	"sync"
	"time"

	"adisyon-backend/internal/clock"
)

// Debouncer: art arda gelen tetiklemeleri son tetiklemeden delay sonra tek çağrıya indirger.
// Çalışırken gelen tetikleme, çalışma bitince yeni bir zamanlama açar.
type Debouncer struct {
	clk   clock.Clock
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	state   DebounceState
	timer   clock.Timer
	seq     int
	pending bool
	stopped bool
}

func NewDebouncer(clk clock.Clock, delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{clk: clk, delay: delay, fn: fn, state: DebounceIdle}
}

func (d *Debouncer) State() DebounceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	switch d.state {
	case DebounceRunning:
		d.pending = true
	case DebounceScheduled:
		d.timer.Stop()
		d.arm()
	case DebounceIdle:
		d.arm()
	}
}

// arm: d.mu tutulurken çağrılır
func (d *Debouncer) arm() {
	d.seq++
	seq := d.seq
	d.timer = d.clk.AfterFunc(d.delay, func() { d.fire(seq) })
	d.state = DebounceScheduled
}

func (d *Debouncer) fire(seq int) {
	d.mu.Lock()
	if d.stopped || d.seq != seq || d.state != DebounceScheduled {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.state = DebounceRunning
	d.mu.Unlock()

	d.fn()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.state = DebounceIdle
	if d.pending {
		d.pending = false
		d.arm()
	}
}

// Stop: bekleyen zamanlayıcıyı iptal eder, sonraki tetiklemeleri yok sayar. Tekrar çağrılabilir.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.state = DebounceIdle
}
