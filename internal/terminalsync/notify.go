package terminalsync

import (
	"errors"
	"sync"
)

// ErrPlaybackBlocked: platform kullanıcı etkileşimi olmadan ses çalmaya izin vermiyor
var ErrPlaybackBlocked = errors.New("ses çalma engellendi")

// Player: uyarı sesini çalar. Politika engeli ErrPlaybackBlocked döner.
type Player interface {
	Play() error
}

type ChannelState string

const (
	ChannelLocked   ChannelState = "locked"
	ChannelUnlocked ChannelState = "unlocked"
)

// NotificationChannel: yeni sipariş uyarısı. Önce çalmayı dener; engellenirse kilitlenir
// ve ilk kullanıcı etkileşiminde bir kez açılan dinleyici kurar. Enable elle açar.
type NotificationChannel struct {
	player Player

	mu     sync.Mutex
	state  ChannelState
	armed  bool
	missed int
}

func NewNotificationChannel(p Player) *NotificationChannel {
	return &NotificationChannel{player: p, state: ChannelLocked}
}

func (n *NotificationChannel) State() ChannelState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Armed: ilk etkileşim dinleyicisi kurulu mu
func (n *NotificationChannel) Armed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.armed
}

// Missed: kilitliyken kaçırılan uyarı sayısı
func (n *NotificationChannel) Missed() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.missed
}

func (n *NotificationChannel) Notify() {
	err := n.player.Play()

	n.mu.Lock()
	defer n.mu.Unlock()
	if err == nil {
		n.state = ChannelUnlocked
		n.armed = false
		return
	}
	n.missed++
	if errors.Is(err, ErrPlaybackBlocked) {
		n.state = ChannelLocked
		n.armed = true
	}
}

// Interact: kullanıcı etkileşimi. Dinleyici kuruluysa kilidi açar ve bir kez söner.
func (n *NotificationChannel) Interact() {
	n.mu.Lock()
	if !n.armed {
		n.mu.Unlock()
		return
	}
	n.armed = false
	n.mu.Unlock()
	n.unlock()
}

// Enable: "sesi aç" butonu
func (n *NotificationChannel) Enable() error {
	n.mu.Lock()
	n.armed = false
	n.mu.Unlock()
	return n.unlock()
}

func (n *NotificationChannel) unlock() error {
	if err := n.player.Play(); err != nil {
		return err
	}
	n.mu.Lock()
	n.state = ChannelUnlocked
	n.missed = 0
	n.mu.Unlock()
	return nil
}

// Disarm: terminal kapanırken dinleyiciyi kaldırır
func (n *NotificationChannel) Disarm() {
	n.mu.Lock()
	n.armed = false
	n.mu.Unlock()
}
