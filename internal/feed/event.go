// Package feed, işletme kapsamlı değişiklik olaylarını terminallere taşır.
// Teslimat en az bir kez, sırasız ve kayıplı olabilir; terminaller her olayda
// tam liste çekerek yakınsar.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Collection string

const (
	CollectionOrders   Collection = "orders"
	CollectionPayments Collection = "payments"
)

func ParseCollection(s string) (Collection, error) {
	switch c := Collection(strings.ToLower(strings.TrimSpace(s))); c {
	case CollectionOrders, CollectionPayments:
		return c, nil
	}
	return "", fmt.Errorf("geçersiz koleksiyon: %q (orders|payments)", s)
}

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
)

type Event struct {
	ID         string     `json:"id"`
	BusinessID uint       `json:"business_id"`
	Collection Collection `json:"collection"`
	Op         Op         `json:"op"`
	RecordID   uint       `json:"record_id"`
	At         time.Time  `json:"at"`
}

// NewEvent: zaman sıralı (v7) kimlikle olay
func NewEvent(businessID uint, col Collection, op Op, recordID uint, at time.Time) Event {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Event{
		ID:         id.String(),
		BusinessID: businessID,
		Collection: col,
		Op:         op,
		RecordID:   recordID,
		At:         at,
	}
}

// Scope: bir aboneliğin filtrelediği işletme ve koleksiyonlar. Boş liste hepsi demek.
type Scope struct {
	BusinessID  uint
	Collections []Collection
}

func (s Scope) Match(ev Event) bool {
	if ev.BusinessID != s.BusinessID {
		return false
	}
	if len(s.Collections) == 0 {
		return true
	}
	for _, c := range s.Collections {
		if c == ev.Collection {
			return true
		}
	}
	return false
}

// Handler: abonelik geri çağrıları. OnReady sunucu aboneliği onayladığında,
// OnClose bağlantı kendiliğinden koptuğunda bir kez çağrılır; Close ile kapatılan
// abonelikte OnClose çağrılmaz.
type Handler struct {
	OnReady func()
	OnEvent func(Event)
	OnClose func(error)
}

type Subscription interface {
	Close()
}

// Source: Hub (süreç içi) ve Client (SSE) bu arayüzü sağlar
type Source interface {
	Subscribe(scope Scope, h Handler) (Subscription, error)
}

// Publisher: store commit sonrası olayları buraya yazar
type Publisher interface {
	Publish(ev Event)
}
