// Package terminalsync, bir terminalin aktif sipariş önbelleğini canlı olay akışı,
// debounce edilmiş tam yenileme ve kopukluk sırasında periyodik sorgu ile güncel tutar.
package terminalsync

import "fmt"

// ConnState: terminalin gösterdiği bağlantı durumu
type ConnState string

const (
	ConnConnecting ConnState = "connecting"
	ConnLive       ConnState = "live"
	ConnError      ConnState = "error"
)

// canMove: connecting -> live|error, live -> connecting, error -> connecting|live.
// error -> live, sorgu sırasında arka planda yapılan aboneliğin onayıdır.
func canMove(from, to ConnState) bool {
	switch from {
	case ConnConnecting:
		return to == ConnLive || to == ConnError
	case ConnLive:
		return to == ConnConnecting
	case ConnError:
		return to == ConnConnecting || to == ConnLive
	}
	return false
}

type DebounceState string

const (
	DebounceIdle      DebounceState = "idle"
	DebounceScheduled DebounceState = "scheduled"
	DebounceRunning   DebounceState = "running"
)

type PollState string

const (
	PollStopped PollState = "stopped"
	PollRunning PollState = "running"
)

// Kind: terminal türü. Yeni sipariş uyarısı sadece mutfakta çalar.
type Kind string

const (
	KindPOS     Kind = "pos"
	KindKitchen Kind = "kitchen"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindPOS, KindKitchen:
		return k, nil
	}
	return "", fmt.Errorf("geçersiz terminal türü: %q (pos|kitchen)", s)
}
