package terminalsync

import (
	"sync"
	"time"

	"adisyon-backend/internal/clock"
)

// Poller: sabit aralıkla fn çağırır. Sadece bağlantı hatası sırasında çalışır.
type Poller struct {
	clk      clock.Clock
	interval time.Duration
	fn       func()

	mu    sync.Mutex
	state PollState
	timer clock.Timer
	seq   int
}

func NewPoller(clk clock.Clock, interval time.Duration, fn func()) *Poller {
	return &Poller{clk: clk, interval: interval, fn: fn, state: PollStopped}
}

func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start: zaten çalışıyorsa bir şey yapmaz
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = PollRunning
	if p.timer == nil {
		p.arm()
	}
}

func (p *Poller) arm() {
	p.seq++
	seq := p.seq
	p.timer = p.clk.AfterFunc(p.interval, func() { p.tick(seq) })
}

func (p *Poller) tick(seq int) {
	p.mu.Lock()
	if p.state != PollRunning || p.seq != seq || p.timer == nil {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.mu.Unlock()

	p.fn()

	// fn içinde Stop/Start çağrılmış olabilir
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PollRunning && p.timer == nil {
		p.arm()
	}
}

func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = PollStopped
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
