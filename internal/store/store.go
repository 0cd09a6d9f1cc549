// Package store, çekirdek paketlerin Backend arayüzlerini gorm üzerinde gerçekler.
// Her durum değiştiren çağrı tek transaction'dır; değişiklik olayları ve denetim
// kayıtları commit'ten sonra yazılır.
package store

import (
	"context"
	"errors"
	"log"

	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/audit"
	"adisyon-backend/internal/cashsession"
	"adisyon-backend/internal/clock"
	"adisyon-backend/internal/feed"
	"adisyon-backend/internal/models"
	"adisyon-backend/internal/orders"
	"adisyon-backend/internal/settlement"
	"adisyon-backend/internal/terminalsync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db    *gorm.DB
	clock clock.Clock
	pub   feed.Publisher
}

func New(db *gorm.DB, clk clock.Clock, pub feed.Publisher) *Store {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Store{db: db, clock: clk, pub: pub}
}

func (s *Store) DB() *gorm.DB { return s.db }

// txEffects: commit sonrası uygulanacak yan etkiler
type txEffects struct {
	events []feed.Event
	audits []audit.LogOptions
}

func (e *txEffects) event(businessID uint, col feed.Collection, op feed.Op, recordID uint, s *Store) {
	e.events = append(e.events, feed.NewEvent(businessID, col, op, recordID, s.clock.Now()))
}

func (e *txEffects) audit(opts audit.LogOptions) {
	e.audits = append(e.audits, opts)
}

// atomic: fn tek transaction içinde çalışır. Denetim kaydı hatası birincil işlemi geri almaz.
func (s *Store) atomic(ctx context.Context, fn func(tx *gorm.DB, fx *txEffects) error) error {
	fx := &txEffects{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, fx)
	})
	if err != nil {
		return dbErr(err, "işlem tamamlanamadı")
	}

	if s.pub != nil {
		for _, ev := range fx.events {
			s.pub.Publish(ev)
		}
	}
	for _, opts := range fx.audits {
		if err := audit.WriteLog(ctx, s.db, opts); err != nil {
			log.Printf("[WARN] %v", err)
		}
	}
	return nil
}

// dbErr: uygulama hatalarını olduğu gibi bırakır, gorm hatalarını sınıflandırır
func dbErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("kayıt bulunamadı")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("", "kayıt zaten mevcut")
	}
	return apperr.Backend(err, "%s", msg)
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s bulunamadı", what)
	}
	return err
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *Store) Business(ctx context.Context, businessID uint) (*models.Business, error) {
	var b models.Business
	if err := s.db.WithContext(ctx).First(&b, businessID).Error; err != nil {
		return nil, dbErr(notFound(err, "işletme"), "işletme okunamadı")
	}
	return &b, nil
}

var (
	_ orders.Backend      = (*Store)(nil)
	_ cashsession.Backend = (*Store)(nil)
	_ settlement.Backend  = (*Store)(nil)
	_ terminalsync.Loader = (*Store)(nil)
)
