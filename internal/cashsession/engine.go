package cashsession

import (
	"context"

	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrSessionAlreadyOpen = apperr.Validation("operatörün zaten açık bir kasa oturumu var")
	ErrNoOpenSession      = apperr.Validation("açık kasa oturumu yok")
	ErrSessionClosed      = apperr.Validation("kasa oturumu kapanmış")
	ErrNotOwner           = apperr.Conflict("", "kasa oturumu başka bir operatöre ait")
)

// MovementInput: elle kasa hareketi. Gerekçe zorunlu.
type MovementInput struct {
	Direction models.MovementDirection `json:"direction"`
	Amount    decimal.Decimal          `json:"amount"`
	Reason    string                   `json:"reason"`
}

// Backend: kasa oturumlarının yetkili kaynağı. CreateSession, AddMovement ve CloseSession atomiktir.
type Backend interface {
	Business(ctx context.Context, businessID uint) (*models.Business, error)
	// OpenSession: operatörün açık oturumu, yoksa nil
	OpenSession(ctx context.Context, businessID, operatorID uint) (*models.CashSession, error)
	GetSession(ctx context.Context, businessID, sessionID uint) (*models.CashSession, error)
	CreateSession(ctx context.Context, actor models.Actor, openingFloat decimal.Decimal) (*models.CashSession, error)
	AddMovement(ctx context.Context, actor models.Actor, sessionID uint, in MovementInput) (*models.CashMovement, error)
	Reconcile(ctx context.Context, businessID, sessionID uint) (*models.ReconciliationSnapshot, error)
	CloseSession(ctx context.Context, actor models.Actor, in CloseInput) (*models.CashSession, error)
}

type Engine struct {
	backend Backend
}

func NewEngine(backend Backend) *Engine {
	return &Engine{backend: backend}
}

// Open: yeni vardiya. Açılış fonu >= 0.
func (e *Engine) Open(ctx context.Context, actor models.Actor, openingFloat decimal.Decimal) (*models.CashSession, error) {
	if openingFloat.IsNegative() {
		return nil, apperr.Validation("açılış fonu negatif olamaz")
	}
	existing, err := e.backend.OpenSession(ctx, actor.BusinessID, actor.OperatorID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSessionAlreadyOpen
	}
	return e.backend.CreateSession(ctx, actor, openingFloat)
}

// Current: operatörün açık oturumu
func (e *Engine) Current(ctx context.Context, actor models.Actor) (*models.CashSession, error) {
	s, err := e.backend.OpenSession(ctx, actor.BusinessID, actor.OperatorID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNoOpenSession
	}
	return s, nil
}

// owned: oturum sadece açan operatör tarafından değiştirilebilir
func (e *Engine) owned(ctx context.Context, actor models.Actor, sessionID uint) (*models.CashSession, error) {
	s, err := e.backend.GetSession(ctx, actor.BusinessID, sessionID)
	if err != nil {
		return nil, err
	}
	if s.OperatorID != actor.OperatorID {
		return nil, ErrNotOwner
	}
	if s.Status != models.CashSessionOpen {
		return nil, ErrSessionClosed
	}
	return s, nil
}

func (e *Engine) AddMovement(ctx context.Context, actor models.Actor, sessionID uint, in MovementInput) (*models.CashMovement, error) {
	if _, err := models.ParseMovementDirection(string(in.Direction)); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("tutar 0'dan büyük olmalı")
	}
	in.Reason = models.CleanText(in.Reason)
	if in.Reason == "" {
		return nil, apperr.Validation("kasa hareketi için gerekçe zorunlu")
	}
	if _, err := e.owned(ctx, actor, sessionID); err != nil {
		return nil, err
	}
	return e.backend.AddMovement(ctx, actor, sessionID, in)
}

// Snapshot: anlık mutabakat, hiçbir şey yazmaz
func (e *Engine) Snapshot(ctx context.Context, actor models.Actor, sessionID uint) (*models.ReconciliationSnapshot, error) {
	s, err := e.backend.GetSession(ctx, actor.BusinessID, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status == models.CashSessionClosed && s.Snapshot != nil {
		return s.Snapshot, nil
	}
	return e.backend.Reconcile(ctx, actor.BusinessID, sessionID)
}

// BeginClose: kapanış akışını başlatır (1. adım: mutabakat)
func (e *Engine) BeginClose(ctx context.Context, actor models.Actor, sessionID uint) (*CloseFlow, error) {
	s, err := e.owned(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	biz, err := e.backend.Business(ctx, actor.BusinessID)
	if err != nil {
		return nil, err
	}
	snap, err := e.backend.Reconcile(ctx, actor.BusinessID, sessionID)
	if err != nil {
		return nil, err
	}
	return &CloseFlow{
		backend:  e.backend,
		actor:    actor,
		session:  s,
		policy:   PolicyFor(biz),
		snapshot: *snap,
		step:     StepReview,
	}, nil
}

// Preview: kapanışı yazmadan 1-3. adımları çalıştırır
func (e *Engine) Preview(ctx context.Context, actor models.Actor, in CloseInput) (*CloseFigures, *models.ReconciliationSnapshot, error) {
	flow, err := e.BeginClose(ctx, actor, in.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if err := flow.Count(in.CountedCash); err != nil {
		return nil, nil, err
	}
	snap := flow.Snapshot()
	fig := ComputeClose(snap, flow.policy, in.CountedCash, in.KeepFloat)
	return &fig, &snap, nil
}

// Close: tüm adımları sırayla çalıştırır
func (e *Engine) Close(ctx context.Context, actor models.Actor, in CloseInput) (*models.CashSession, error) {
	flow, err := e.BeginClose(ctx, actor, in.SessionID)
	if err != nil {
		return nil, err
	}
	if err := flow.Count(in.CountedCash); err != nil {
		return nil, err
	}
	if err := flow.Settle(in.KeepFloat, in.Note); err != nil {
		return nil, err
	}
	return flow.Commit(ctx)
}
