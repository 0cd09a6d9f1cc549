package orders

import (
	"context"

	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/models"
)

// ItemInput: eklenecek kalem. İsim ve fiyat katalogdan, ekleme anında kopyalanır.
type ItemInput struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

type CreateInput struct {
	ServiceType models.ServiceType `json:"service_type"`
	TableLabel  string             `json:"table_label"`
	Notes       string             `json:"notes"`
	Items       []ItemInput        `json:"items"`
}

// Backend: siparişlerin yetkili kaynağı. Durum değiştiren çağrılar atomiktir ve kuralları
// kendi transaction'ı içinde yeniden uygular.
type Backend interface {
	Business(ctx context.Context, businessID uint) (*models.Business, error)
	CreateOrder(ctx context.Context, actor models.Actor, in CreateInput) (*models.Order, error)
	GetOrder(ctx context.Context, businessID, orderID uint) (*models.Order, error)
	ActiveOrders(ctx context.Context, businessID uint) ([]models.Order, error)
	OrderPayments(ctx context.Context, businessID, orderID uint) ([]models.Payment, error)
	AddItems(ctx context.Context, actor models.Actor, orderID uint, items []ItemInput) (*models.Order, error)
	AdvanceOrder(ctx context.Context, actor models.Actor, orderID uint, from models.OrderStatus) (*models.Order, error)
	CancelOrder(ctx context.Context, actor models.Actor, orderID uint, reason string) (*models.Order, error)
	// OpenSession: operatörün açık oturumu, yoksa nil
	OpenSession(ctx context.Context, businessID, operatorID uint) (*models.CashSession, error)
}

type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

func validateItems(items []ItemInput) error {
	for i, it := range items {
		if it.ProductID == 0 {
			return apperr.Validation("%d. kalem: ürün seçilmeli", i+1)
		}
		if it.Quantity <= 0 {
			return apperr.Validation("%d. kalem: adet 0'dan büyük olmalı", i+1)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (*models.Order, error) {
	if _, err := models.ParseServiceType(string(in.ServiceType)); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	in.TableLabel = models.CleanText(in.TableLabel)
	in.Notes = models.CleanText(in.Notes)
	return s.backend.CreateOrder(ctx, actor, in)
}

func (s *Service) Get(ctx context.Context, actor models.Actor, orderID uint) (*models.Order, error) {
	return s.backend.GetOrder(ctx, actor.BusinessID, orderID)
}

func (s *Service) Active(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	return s.backend.ActiveOrders(ctx, actor.BusinessID)
}

func (s *Service) AddItems(ctx context.Context, actor models.Actor, orderID uint, items []ItemInput) (*models.Order, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("en az bir kalem gerekli")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}
	return s.backend.AddItems(ctx, actor, orderID, items)
}

// Advance: tek "ilerlet" eylemi. from, terminalin son gördüğü durum.
func (s *Service) Advance(ctx context.Context, actor models.Actor, orderID uint, from models.OrderStatus) (*models.Order, error) {
	return s.backend.AdvanceOrder(ctx, actor, orderID, from)
}

func (s *Service) Cancel(ctx context.Context, actor models.Actor, orderID uint, reason string) (*models.Order, error) {
	reason = models.CleanText(reason)
	if reason == "" {
		return nil, apperr.Validation("iptal gerekçesi zorunlu")
	}
	return s.backend.CancelOrder(ctx, actor, orderID, reason)
}

// Actions: siparişin güncel haline göre geçerli eylemler
func (s *Service) Actions(ctx context.Context, actor models.Actor, orderID uint) (*Actions, error) {
	o, err := s.backend.GetOrder(ctx, actor.BusinessID, orderID)
	if err != nil {
		return nil, err
	}
	biz, err := s.backend.Business(ctx, actor.BusinessID)
	if err != nil {
		return nil, err
	}
	payments, err := s.backend.OrderPayments(ctx, actor.BusinessID, orderID)
	if err != nil {
		return nil, err
	}
	open, err := s.backend.OpenSession(ctx, actor.BusinessID, actor.OperatorID)
	if err != nil {
		return nil, err
	}
	a := LegalActions(o, biz.OperationMode, payments, open)
	return &a, nil
}
