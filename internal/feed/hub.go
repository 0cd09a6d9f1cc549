package feed

import (
	"sync"
	"sync/atomic"
)

const defaultBuffer = 64

// Hub: süreç içi yayın. Yavaş izleyici yayıncıyı bloklamaz; tampon doluysa olay düşer.
type Hub struct {
	mu       sync.RWMutex
	watchers map[*Watcher]struct{}
}

func NewHub() *Hub {
	return &Hub{watchers: map[*Watcher]struct{}{}}
}

type Watcher struct {
	hub     *Hub
	scope   Scope
	ch      chan Event
	dropped atomic.Uint64
	once    sync.Once
}

// C: olay kanalı, Close sonrası kapanır
func (w *Watcher) C() <-chan Event { return w.ch }

// Dropped: tampon dolduğu için kaybolan olay sayısı
func (w *Watcher) Dropped() uint64 { return w.dropped.Load() }

func (w *Watcher) Close() {
	w.once.Do(func() {
		w.hub.mu.Lock()
		delete(w.hub.watchers, w)
		close(w.ch)
		w.hub.mu.Unlock()
	})
}

func (h *Hub) Watch(scope Scope, buffer int) *Watcher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	w := &Watcher{hub: h, scope: scope, ch: make(chan Event, buffer)}
	h.mu.Lock()
	h.watchers[w] = struct{}{}
	h.mu.Unlock()
	return w
}

func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for w := range h.watchers {
		if !w.scope.Match(ev) {
			continue
		}
		select {
		case w.ch <- ev:
		default:
			w.dropped.Add(1)
		}
	}
}

// Watchers: aktif izleyici sayısı
func (h *Hub) Watchers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}

type hubSubscription struct {
	w *Watcher
}

func (s *hubSubscription) Close() { s.w.Close() }

// Subscribe: Source gerçeklemesi. Onay hemen, olaylar ayrı goroutine'den gelir.
func (h *Hub) Subscribe(scope Scope, hd Handler) (Subscription, error) {
	w := h.Watch(scope, defaultBuffer)
	go func() {
		if hd.OnReady != nil {
			hd.OnReady()
		}
		for ev := range w.C() {
			if hd.OnEvent != nil {
				hd.OnEvent(ev)
			}
		}
	}()
	return &hubSubscription{w: w}, nil
}
