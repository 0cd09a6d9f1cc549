package terminalsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"adisyon-backend/internal/clock"
	"adisyon-backend/internal/feed"
	"adisyon-backend/internal/models"
)

var ErrSubscribeTimeout = errors.New("abonelik onayı zamanında gelmedi")

// Loader: aktif siparişlerin yetkili listesi (store veya REST istemcisi)
type Loader interface {
	ActiveOrders(ctx context.Context, businessID uint) ([]models.Order, error)
}

// Context: terminal açılırken bir kez kurulur ve açıkça taşınır
type Context struct {
	BusinessID uint
	OperatorID uint
	Role       models.UserRole
	Kind       Kind
}

type Config struct {
	Debounce         time.Duration
	PollInterval     time.Duration
	SubscribeTimeout time.Duration
}

// DefaultConfig: 300ms debounce, 10s sorgu, 5s abonelik zaman aşımı
func DefaultConfig() Config {
	return Config{Debounce: 300 * time.Millisecond, PollInterval: 10 * time.Second, SubscribeTimeout: 5 * time.Second}
}

// Observer: her durum değişikliği ve yenilemeden sonra çağrılır. Kilit dışında çalışır.
type Observer func(ConnState, []models.Order)

// Resources: teardown sonrası hepsi false olmalı
type Resources struct {
	Subscribed      bool
	TimeoutArmed    bool
	DebounceEnabled bool
	Polling         bool
}

type Terminal struct {
	tc     Context
	cfg    Config
	loader Loader
	source feed.Source
	clk    clock.Clock
	alert  *NotificationChannel
	log    *slog.Logger

	debounce *Debouncer
	poller   *Poller

	mu        sync.Mutex
	conn      ConnState
	orders    []models.Order
	sub       feed.Subscription
	timeout   clock.Timer
	gen       int
	loadSeq   int
	loaded    int
	mounted   bool
	torn      bool
	observers []Observer
	ctx       context.Context
	cancel    context.CancelFunc
}

type Option func(*Terminal)

// WithAlert: mutfak terminalinde yeni sipariş uyarısı
func WithAlert(n *NotificationChannel) Option {
	return func(t *Terminal) { t.alert = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Terminal) { t.log = l }
}

func New(tc Context, cfg Config, loader Loader, source feed.Source, clk clock.Clock, opts ...Option) *Terminal {
	t := &Terminal{
		tc:     tc,
		cfg:    cfg,
		loader: loader,
		source: source,
		clk:    clk,
		log:    slog.Default(),
		conn:   ConnConnecting,
	}
	for _, o := range opts {
		o(t)
	}
	t.debounce = NewDebouncer(clk, cfg.Debounce, t.reload)
	t.poller = NewPoller(clk, cfg.PollInterval, t.pollTick)
	return t
}

func (t *Terminal) Context() Context { return t.tc }

func (t *Terminal) State() ConnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

// Orders: önbellekteki aktif siparişlerin kopyası
func (t *Terminal) Orders() []models.Order {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Order(nil), t.orders...)
}

func (t *Terminal) Alert() *NotificationChannel { return t.alert }

func (t *Terminal) Observe(o Observer) {
	t.mu.Lock()
	t.observers = append(t.observers, o)
	t.mu.Unlock()
}

func (t *Terminal) Active() Resources {
	t.mu.Lock()
	r := Resources{Subscribed: t.sub != nil, TimeoutArmed: t.timeout != nil}
	t.mu.Unlock()
	r.Polling = t.poller.State() == PollRunning
	d := t.debounce
	d.mu.Lock()
	r.DebounceEnabled = !d.stopped
	d.mu.Unlock()
	return r
}

// Mount: ilk yüklemeyi yapar ve olay akışına abone olur. Bir kez çağrılır.
func (t *Terminal) Mount(ctx context.Context) {
	t.mu.Lock()
	if t.mounted || t.torn {
		t.mu.Unlock()
		return
	}
	t.mounted = true
	t.ctx, t.cancel = context.WithCancel(ctx)
	t.mu.Unlock()

	t.reload()
	t.subscribe()
}

// Teardown: abonelik, debounce ve sorgu zamanlayıcılarını bırakır. Tekrar çağrılabilir.
func (t *Terminal) Teardown() {
	t.mu.Lock()
	if t.torn {
		t.mu.Unlock()
		return
	}
	t.torn = true
	t.gen++
	sub := t.sub
	t.sub = nil
	if t.timeout != nil {
		t.timeout.Stop()
		t.timeout = nil
	}
	cancel := t.cancel
	t.mu.Unlock()

	t.debounce.Stop()
	t.poller.Stop()
	if sub != nil {
		sub.Close()
	}
	if cancel != nil {
		cancel()
	}
	if t.alert != nil {
		t.alert.Disarm()
	}
}

// setConn: t.mu tutulurken çağrılır; geçersiz geçişi reddeder
func (t *Terminal) setConn(to ConnState) bool {
	if t.conn == to || !canMove(t.conn, to) {
		return false
	}
	t.log.Debug("bağlantı durumu", "from", t.conn, "to", to)
	t.conn = to
	return true
}

func (t *Terminal) snapshot() (ConnState, []models.Order, []Observer) {
	return t.conn, append([]models.Order(nil), t.orders...), append([]Observer(nil), t.observers...)
}

func emit(conn ConnState, orders []models.Order, obs []Observer) {
	for _, o := range obs {
		o(conn, orders)
	}
}

func (t *Terminal) subscribe() {
	t.mu.Lock()
	if t.torn {
		t.mu.Unlock()
		return
	}
	t.gen++
	gen := t.gen
	old := t.sub
	t.sub = nil
	// hata modundaki deneme arka planda yapılır: durum ve sorgu onay gelene kadar sürer
	changed := false
	if t.conn != ConnError {
		changed = t.setConn(ConnConnecting)
	}
	if t.timeout != nil {
		t.timeout.Stop()
	}
	t.timeout = t.clk.AfterFunc(t.cfg.SubscribeTimeout, func() { t.fail(gen, ErrSubscribeTimeout) })
	conn, orders, obs := t.snapshot()
	t.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if changed {
		emit(conn, orders, obs)
	}

	scope := feed.Scope{
		BusinessID:  t.tc.BusinessID,
		Collections: []feed.Collection{feed.CollectionOrders, feed.CollectionPayments},
	}
	sub, err := t.source.Subscribe(scope, feed.Handler{
		OnReady: func() { t.ready(gen) },
		OnEvent: func(ev feed.Event) { t.event(gen, ev) },
		OnClose: func(err error) { t.closed(gen, err) },
	})
	if err != nil {
		t.fail(gen, err)
		return
	}

	t.mu.Lock()
	if t.torn || t.gen != gen {
		t.mu.Unlock()
		sub.Close()
		return
	}
	t.sub = sub
	t.mu.Unlock()
}

func (t *Terminal) ready(gen int) {
	t.mu.Lock()
	if t.torn || t.gen != gen {
		t.mu.Unlock()
		return
	}
	if t.timeout != nil {
		t.timeout.Stop()
		t.timeout = nil
	}
	changed := t.setConn(ConnLive)
	conn, orders, obs := t.snapshot()
	t.mu.Unlock()

	t.poller.Stop()
	if changed {
		emit(conn, orders, obs)
		// kopukken kaçan olaylar için
		t.debounce.Trigger()
	}
}

func (t *Terminal) event(gen int, ev feed.Event) {
	t.mu.Lock()
	stale := t.torn || t.gen != gen
	t.mu.Unlock()
	if stale {
		return
	}
	if ev.Collection == feed.CollectionOrders && ev.Op == feed.OpInsert &&
		t.tc.Kind == KindKitchen && t.alert != nil {
		t.alert.Notify()
	}
	t.debounce.Trigger()
}

// closed: akış kendiliğinden koptu. Canlıyken koptuysa hemen yeniden bağlanır,
// onay gelmeden koptuysa hata moduna düşer.
func (t *Terminal) closed(gen int, err error) {
	t.mu.Lock()
	if t.torn || t.gen != gen {
		t.mu.Unlock()
		return
	}
	sub := t.sub
	t.sub = nil
	wasLive := t.conn == ConnLive
	t.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	t.log.Debug("olay akışı kapandı", "err", err)
	if wasLive {
		t.subscribe()
		return
	}
	t.fail(gen, err)
}

// fail: connecting -> error, sorgu başlar
func (t *Terminal) fail(gen int, err error) {
	t.mu.Lock()
	if t.torn || t.gen != gen {
		t.mu.Unlock()
		return
	}
	if t.timeout != nil {
		t.timeout.Stop()
		t.timeout = nil
	}
	sub := t.sub
	t.sub = nil
	// eski aboneliğin geç gelen geri çağrıları yok sayılır
	t.gen++
	changed := t.setConn(ConnError)
	conn, orders, obs := t.snapshot()
	t.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	t.poller.Start()
	if changed {
		t.log.Warn("canlı akış yok, periyodik sorguya geçildi", "err", err)
		emit(conn, orders, obs)
		return
	}
	t.log.Debug("yeniden abonelik başarısız", "err", err)
}

// pollTick: hata modunda tam yenileme ve yeniden abonelik denemesi
func (t *Terminal) pollTick() {
	if t.State() != ConnError {
		return
	}
	t.reload()
	t.subscribe()
}

// reload: aktif siparişleri baştan çeker, önbelleği bütünüyle değiştirir.
// Debounce ve sorgu aynı anda yükleyebilir; daha yeni bir sonuç yazıldıysa eskisi atılır.
func (t *Terminal) reload() {
	t.mu.Lock()
	ctx := t.ctx
	torn := t.torn
	t.loadSeq++
	seq := t.loadSeq
	t.mu.Unlock()
	if torn || ctx == nil {
		return
	}

	list, err := t.loader.ActiveOrders(ctx, t.tc.BusinessID)
	if err != nil {
		t.log.Warn("aktif siparişler yüklenemedi", "err", err)
		return
	}

	active := make([]models.Order, 0, len(list))
	for _, o := range list {
		if o.Status.Active() {
			active = append(active, o)
		}
	}

	t.mu.Lock()
	if t.torn || seq < t.loaded {
		t.mu.Unlock()
		return
	}
	t.loaded = seq
	t.orders = active
	conn, orders, obs := t.snapshot()
	t.mu.Unlock()

	emit(conn, orders, obs)
}
