package settlement

import (
	"context"

	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/models"
	"adisyon-backend/internal/orders"

	"github.com/shopspring/decimal"
)

// DirectInput: yeni sipariş + tam tahsilat tek işlemde
type DirectInput struct {
	Order          orders.CreateInput   `json:"order"`
	Discount       decimal.Decimal      `json:"discount"`
	DiscountReason string               `json:"discount_reason"`
	Method         models.PaymentMethod `json:"method"`
}

// DeferredInput: mevcut siparişe tahsilat. Amount boşsa kalan tutarın tamamı.
type DeferredInput struct {
	OrderID uint                 `json:"order_id"`
	Method  models.PaymentMethod `json:"method"`
	Amount  *decimal.Decimal     `json:"amount"`
}

type Result struct {
	Order *models.Order `json:"order"`
	// Kalan <= 0 olan ertelenmiş tahsilatta nil
	Payment *models.Payment `json:"payment"`
}

// Backend: tahsilat ve geri alma çağrıları atomiktir; kurallar transaction içinde yeniden uygulanır.
type Backend interface {
	OpenSession(ctx context.Context, businessID, operatorID uint) (*models.CashSession, error)
	GetOrder(ctx context.Context, businessID, orderID uint) (*models.Order, error)
	OrderPayments(ctx context.Context, businessID, orderID uint) ([]models.Payment, error)
	GetPayment(ctx context.Context, businessID, paymentID uint) (*models.Payment, error)
	SettleDirect(ctx context.Context, actor models.Actor, in DirectInput) (*Result, error)
	SettleDeferred(ctx context.Context, actor models.Actor, in DeferredInput) (*Result, error)
	VoidPayment(ctx context.Context, actor models.Actor, paymentID uint, reason string) (*models.Payment, error)
	RefundPayment(ctx context.Context, actor models.Actor, paymentID uint, reason string) (*models.Payment, error)
}

type Coordinator struct {
	backend Backend
}

func NewCoordinator(backend Backend) *Coordinator {
	return &Coordinator{backend: backend}
}

func (c *Coordinator) requireOpenSession(ctx context.Context, actor models.Actor) (*models.CashSession, error) {
	open, err := c.backend.OpenSession(ctx, actor.BusinessID, actor.OperatorID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, ErrNoOpenSession
	}
	return open, nil
}

func parseMethod(m models.PaymentMethod) error {
	if _, err := models.ParsePaymentMethod(string(m)); err != nil {
		return apperr.Validation("%s", err.Error())
	}
	return nil
}

// DirectSettle: sipariş, kalemler ve indirimli toplam kadar tek "paid" ödeme
func (c *Coordinator) DirectSettle(ctx context.Context, actor models.Actor, in DirectInput) (*Result, error) {
	if err := parseMethod(in.Method); err != nil {
		return nil, err
	}
	if _, err := models.ParseServiceType(string(in.Order.ServiceType)); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if len(in.Order.Items) == 0 {
		return nil, apperr.Validation("en az bir kalem gerekli")
	}
	for i, it := range in.Order.Items {
		if it.ProductID == 0 || it.Quantity <= 0 {
			return nil, apperr.Validation("%d. kalem geçersiz", i+1)
		}
	}
	if in.Discount.IsNegative() {
		return nil, apperr.Validation("indirim negatif olamaz")
	}
	in.DiscountReason = models.CleanText(in.DiscountReason)
	if in.Discount.IsPositive() && in.DiscountReason == "" {
		return nil, apperr.Validation("indirim için gerekçe zorunlu")
	}
	in.Order.TableLabel = models.CleanText(in.Order.TableLabel)
	in.Order.Notes = models.CleanText(in.Order.Notes)

	if _, err := c.requireOpenSession(ctx, actor); err != nil {
		return nil, err
	}
	return c.backend.SettleDirect(ctx, actor, in)
}

// DeferredSettle: remaining = total - Σpaid. Kalan > 0 ise tek ödeme, değilse sadece durum.
func (c *Coordinator) DeferredSettle(ctx context.Context, actor models.Actor, in DeferredInput) (*Result, error) {
	if err := parseMethod(in.Method); err != nil {
		return nil, err
	}
	o, err := c.backend.GetOrder(ctx, actor.BusinessID, in.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status == models.OrderStatusCancelled || o.Status == models.OrderStatusClosed {
		return nil, &orders.TransitionError{OrderID: o.ID, Current: o.Status, Attempted: models.OrderStatusPaid, Reason: "kapanmış/iptal edilmiş siparişe tahsilat yapılamaz"}
	}
	payments, err := c.backend.OrderPayments(ctx, actor.BusinessID, in.OrderID)
	if err != nil {
		return nil, err
	}
	amount, err := Charge(o, payments, in.Amount)
	if err != nil {
		return nil, err
	}
	if amount.IsPositive() {
		if _, err := c.requireOpenSession(ctx, actor); err != nil {
			return nil, err
		}
	}
	return c.backend.SettleDeferred(ctx, actor, in)
}

func (c *Coordinator) reversalTarget(ctx context.Context, actor models.Actor, paymentID uint, reason string) (*models.Payment, *models.CashSession, string, error) {
	reason = models.CleanText(reason)
	if reason == "" {
		return nil, nil, "", apperr.Validation("gerekçe zorunlu")
	}
	p, err := c.backend.GetPayment(ctx, actor.BusinessID, paymentID)
	if err != nil {
		return nil, nil, "", err
	}
	open, err := c.backend.OpenSession(ctx, actor.BusinessID, actor.OperatorID)
	if err != nil {
		return nil, nil, "", err
	}
	return p, open, reason, nil
}

func (c *Coordinator) Void(ctx context.Context, actor models.Actor, paymentID uint, reason string) (*models.Payment, error) {
	p, open, reason, err := c.reversalTarget(ctx, actor, paymentID, reason)
	if err != nil {
		return nil, err
	}
	if err := CheckVoid(*p, open); err != nil {
		return nil, err
	}
	return c.backend.VoidPayment(ctx, actor, paymentID, reason)
}

func (c *Coordinator) Refund(ctx context.Context, actor models.Actor, paymentID uint, reason string) (*models.Payment, error) {
	p, open, reason, err := c.reversalTarget(ctx, actor, paymentID, reason)
	if err != nil {
		return nil, err
	}
	if err := CheckRefund(*p, open); err != nil {
		return nil, err
	}
	return c.backend.RefundPayment(ctx, actor, paymentID, reason)
}

// Decide: siparişin geçerli geri alma eylemi (terminal buton gösterimi için)
func (c *Coordinator) Decide(ctx context.Context, actor models.Actor, orderID uint) (*Decision, error) {
	o, err := c.backend.GetOrder(ctx, actor.BusinessID, orderID)
	if err != nil {
		return nil, err
	}
	payments, err := c.backend.OrderPayments(ctx, actor.BusinessID, orderID)
	if err != nil {
		return nil, err
	}
	open, err := c.backend.OpenSession(ctx, actor.BusinessID, actor.OperatorID)
	if err != nil {
		return nil, err
	}
	d := Decide(o, payments, open)
	return &d, nil
}
