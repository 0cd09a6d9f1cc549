package settlement

import (
	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/cashsession"
	"adisyon-backend/internal/models"
	"adisyon-backend/internal/orders"

	"github.com/shopspring/decimal"
)

var (
	ErrNoOpenSession       = apperr.Validation("ödeme almak için açık kasa oturumu gerekli")
	ErrNotPaid             = apperr.Conflict("", "ödeme 'paid' durumunda değil")
	ErrVoidOtherShift      = apperr.Conflict(string(cashsession.ReversalRefund), "ödeme başka bir kasa oturumunda alınmış, iptal edilemez; iade yapılmalı")
	ErrRefundSameShift     = apperr.Conflict(string(cashsession.ReversalVoid), "ödeme açık oturumunuzda alınmış, iade yerine iptal (void) yapılmalı")
	ErrCashRefundNoSession = apperr.Validation("nakit iade kasadan çıkar, önce bir kasa oturumu açın")
)

// Charge: ertelenmiş tahsilatta alınacak tutar. requested nil ise kalan tutarın tamamı.
// Kalan <= 0 ise ödeme satırı oluşmaz.
func Charge(o *models.Order, payments []models.Payment, requested *decimal.Decimal) (decimal.Decimal, error) {
	remaining := orders.Remaining(o, payments)
	if !remaining.IsPositive() {
		return decimal.Zero, nil
	}
	if requested == nil {
		return remaining, nil
	}
	if !requested.IsPositive() {
		return decimal.Zero, apperr.Validation("tahsil edilecek tutar 0'dan büyük olmalı")
	}
	if requested.GreaterThan(remaining) {
		return decimal.Zero, apperr.Validation("tutar kalan bakiyeyi (%s) aşıyor", remaining.StringFixed(2))
	}
	return *requested, nil
}

// CheckVoid: void sadece ödemenin alındığı oturum operatörün hâlâ açık oturumuysa
func CheckVoid(p models.Payment, open *models.CashSession) error {
	switch cashsession.ReversalFor(p, open) {
	case cashsession.ReversalVoid:
		return nil
	case cashsession.ReversalRefund:
		return ErrVoidOtherShift
	default:
		return ErrNotPaid
	}
}

// CheckRefund: void'in tamamlayıcısı. Açık oturum yoksa veya ödeme başka oturumdansa.
// Nakit iade, parayı veren oturuma yazıldığı için açık oturum ister.
func CheckRefund(p models.Payment, open *models.CashSession) error {
	switch cashsession.ReversalFor(p, open) {
	case cashsession.ReversalRefund:
		if p.Method == models.PaymentMethodCash && open == nil {
			return ErrCashRefundNoSession
		}
		return nil
	case cashsession.ReversalVoid:
		return ErrRefundSameShift
	default:
		return ErrNotPaid
	}
}

type Action string

const (
	ActionNone   Action = "none"
	ActionCancel Action = "cancel"
	ActionVoid   Action = "void"
	ActionRefund Action = "refund"
)

// Decision: bir sipariş için geçerli tek geri alma eylemi
type Decision struct {
	Action    Action `json:"action"`
	PaymentID uint   `json:"payment_id,omitempty"`
}

// Decide: paid ödeme yoksa iptal (durum izin veriyorsa), varsa en son paid ödeme için void veya refund.
// Sonuç her zaman {cancel, void, refund} içinden en fazla biridir.
func Decide(o *models.Order, payments []models.Payment, open *models.CashSession) Decision {
	var last *models.Payment
	for i := range payments {
		p := &payments[i]
		if p.Status != models.PaymentStatusPaid {
			continue
		}
		if last == nil || p.ID > last.ID {
			last = p
		}
	}

	if last == nil {
		if orders.CheckCancel(o, payments) == nil {
			return Decision{Action: ActionCancel}
		}
		return Decision{Action: ActionNone}
	}

	switch cashsession.ReversalFor(*last, open) {
	case cashsession.ReversalVoid:
		return Decision{Action: ActionVoid, PaymentID: last.ID}
	case cashsession.ReversalRefund:
		return Decision{Action: ActionRefund, PaymentID: last.ID}
	default:
		return Decision{Action: ActionNone}
	}
}

// AfterReversal: ödeme geri alındıktan sonra siparişin durumu.
// "paid" işaretli ama artık tam ödenmemiş sipariş açık hesaba döner; diğerleri değişmez.
func AfterReversal(o *models.Order, payments []models.Payment) models.OrderStatus {
	if o.Status == models.OrderStatusPaid && !orders.IsSettled(o, payments) {
		return models.OrderStatusOpen
	}
	return o.Status
}
