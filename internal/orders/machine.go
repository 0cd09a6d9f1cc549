package orders

import (
	"fmt"

	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/cashsession"
	"adisyon-backend/internal/models"

	"github.com/shopspring/decimal"
)

// TransitionError: geçersiz durum geçişi. Terminal körlemesine tekrar denemek yerine
// Current ile kendini düzeltir.
type TransitionError struct {
	OrderID   uint
	Current   models.OrderStatus
	Attempted models.OrderStatus
	Reason    string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("sipariş #%d: %s (güncel durum: %s)", e.OrderID, e.Reason, e.Current)
	}
	return fmt.Sprintf("sipariş #%d: %s -> %s geçişi geçersiz", e.OrderID, e.Current, e.Attempted)
}

func (e *TransitionError) CurrentStatus() string { return string(e.Current) }

func (e *TransitionError) Unwrap() error {
	return &apperr.Error{Kind: apperr.KindValidation, Message: e.Error()}
}

// ErrCancelAfterPayment: ödenmiş siparişler iptal edilemez, void/refund kullanılır
var ErrCancelAfterPayment = apperr.Conflict("void_or_refund",
	"ödemesi alınmış sipariş iptal edilemez, ödemeyi iptal veya iade edin")

// Next: bir sonraki durum sadece mevcut duruma ve çalışma moduna bağlıdır.
// Kapanmış ve iptal edilmiş siparişler ilerlemez.
func Next(status models.OrderStatus, mode models.OperationMode) (models.OrderStatus, bool) {
	kitchen := mode != models.OperationModeCounter

	switch status {
	case models.OrderStatusOpen, models.OrderStatusPaid:
		if kitchen {
			return models.OrderStatusInPrep, true
		}
		return models.OrderStatusReady, true
	case models.OrderStatusInPrep:
		return models.OrderStatusReady, true
	case models.OrderStatusReady:
		return models.OrderStatusDelivered, true
	case models.OrderStatusDelivered:
		return models.OrderStatusClosed, true
	case models.OrderStatusClosed, models.OrderStatusCancelled:
		return "", false
	default:
		return "", false
	}
}

// Cancellable: ödeme öncesi durumlar. Ödeme kontrolü ayrıca yapılır.
func Cancellable(status models.OrderStatus) bool {
	switch status {
	case models.OrderStatusOpen, models.OrderStatusInPrep, models.OrderStatusReady, models.OrderStatusDelivered:
		return true
	case models.OrderStatusPaid, models.OrderStatusClosed, models.OrderStatusCancelled:
		return false
	default:
		return false
	}
}

// LegalNext: durumdan gidilebilecek tüm durumlar (ilerleme + iptal)
func LegalNext(status models.OrderStatus, mode models.OperationMode) []models.OrderStatus {
	var out []models.OrderStatus
	if next, ok := Next(status, mode); ok {
		out = append(out, next)
	}
	if Cancellable(status) {
		out = append(out, models.OrderStatusCancelled)
	}
	return out
}

// SettledStatus: sipariş tamamen ödendiğinde alacağı durum
func SettledStatus(status models.OrderStatus) models.OrderStatus {
	switch status {
	case models.OrderStatusOpen:
		return models.OrderStatusPaid
	case models.OrderStatusDelivered:
		return models.OrderStatusClosed
	default:
		return status
	}
}

// DirectStatus: doğrudan tahsil edilerek açılan siparişin durumu. Tezgah modunda
// mutfak adımı yok, sipariş hemen hazırdır.
func DirectStatus(mode models.OperationMode) models.OrderStatus {
	if mode == models.OperationModeCounter {
		return models.OrderStatusReady
	}
	return SettledStatus(models.OrderStatusOpen)
}

// IsSettled: ödenen toplam sipariş toplamını karşılıyor mu?
func IsSettled(o *models.Order, payments []models.Payment) bool {
	return models.PaidTotal(payments).GreaterThanOrEqual(o.Total)
}

// Remaining: total - Σ paid, negatif olabilir
func Remaining(o *models.Order, payments []models.Payment) decimal.Decimal {
	return o.Total.Sub(models.PaidTotal(payments))
}

// CheckAdvance: ilerlemeyi doğrular ve hedef durumu döndürür. from boş değilse
// terminalin gördüğü durumla güncel durum aynı olmalı.
func CheckAdvance(o *models.Order, mode models.OperationMode, from models.OrderStatus, payments []models.Payment) (models.OrderStatus, error) {
	if from != "" && from != o.Status {
		return "", &TransitionError{OrderID: o.ID, Current: o.Status, Attempted: from, Reason: "sipariş başka bir terminalde güncellendi"}
	}
	next, ok := Next(o.Status, mode)
	if !ok {
		return "", &TransitionError{OrderID: o.ID, Current: o.Status, Reason: "sipariş ilerletilemez"}
	}
	if next == models.OrderStatusClosed && !IsSettled(o, payments) {
		return "", &TransitionError{OrderID: o.ID, Current: o.Status, Attempted: next, Reason: "önce ödeme alınmalı"}
	}
	return next, nil
}

// CheckCancel: iptal sadece ödeme öncesi durumlarda ve hiç "paid" ödeme yokken geçerli.
// Ödeme kontrolü önce gelir, terminal void/refund önerebilsin.
func CheckCancel(o *models.Order, payments []models.Payment) error {
	if models.HasPaid(payments) {
		return ErrCancelAfterPayment
	}
	if !Cancellable(o.Status) {
		return &TransitionError{OrderID: o.ID, Current: o.Status, Attempted: models.OrderStatusCancelled}
	}
	return nil
}

// ApplyItems: kalemleri ekler ve toplamları baştan hesaplar. Ödenmiş sipariş yeniden açılır,
// çünkü yeni kalemler önceki tahsilata dahil değil.
func ApplyItems(o *models.Order, items []models.OrderItem) error {
	switch o.Status {
	case models.OrderStatusClosed, models.OrderStatusCancelled:
		return &TransitionError{OrderID: o.ID, Current: o.Status, Reason: "kapanmış siparişe kalem eklenemez"}
	case models.OrderStatusPaid:
		o.Status = models.OrderStatusOpen
	case models.OrderStatusOpen, models.OrderStatusInPrep, models.OrderStatusReady, models.OrderStatusDelivered:
	default:
		return &TransitionError{OrderID: o.ID, Current: o.Status, Reason: "bilinmeyen durum"}
	}
	o.Items = append(o.Items, items...)
	o.RecomputeTotals()
	return nil
}

// Actions: terminalin göstereceği butonlar
type Actions struct {
	Advance *models.OrderStatus `json:"advance"`
	Settle  bool                `json:"settle"`
	Cancel  bool                `json:"cancel"`
	// ödeme id -> "void" | "refund"
	Reversals map[uint]cashsession.Reversal `json:"reversals"`
}

// LegalActions: iptal ile void/refund birbirini dışlar; ödenmiş ödeme varsa iptal yoktur.
func LegalActions(o *models.Order, mode models.OperationMode, payments []models.Payment, open *models.CashSession) Actions {
	a := Actions{Reversals: map[uint]cashsession.Reversal{}}
	if next, err := CheckAdvance(o, mode, "", payments); err == nil {
		a.Advance = &next
	}
	if o.Status.Active() && Remaining(o, payments).IsPositive() {
		a.Settle = true
	}
	a.Cancel = CheckCancel(o, payments) == nil
	for _, p := range payments {
		if r := cashsession.ReversalFor(p, open); r != cashsession.ReversalNone {
			a.Reversals[p.ID] = r
		}
	}
	return a
}
