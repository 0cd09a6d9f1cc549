package cashsession

import (
	"fmt"
	"sort"
	"time"

	"adisyon-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Policy: işletme kaydından okunan kasa politikası
type Policy struct {
	Tolerance              decimal.Decimal
	ReversalAlertThreshold int
}

func PolicyFor(b *models.Business) Policy {
	return Policy{
		Tolerance:              b.CashTolerance,
		ReversalAlertThreshold: b.ReversalAlertThreshold,
	}
}

// Ledger: bir oturumun mutabakatına giren ham kayıtlar
type Ledger struct {
	Session models.CashSession // Movements dolu olmalı
	// Bu oturumda alınan ödemeler (CashSessionID == Session.ID)
	Payments []models.Payment
	// Bu oturumdan kasadan çıkan iadeler (ReversalSessionID == Session.ID)
	Refunds []models.Payment
}

type balanceEvent struct {
	at    time.Time
	delta decimal.Decimal
}

// Compute: mutabakat görünümünü hesaplar.
//
//	expected = açılış + nakit satış + elle giriş - elle çıkış - nakit iade - nakit iptal
//
// Kart ve havale sadece satış kırılımında görünür, nakit hesabına girmez.
// Kapanış çekimi (withdrawal) hesaba katılmaz.
func Compute(l Ledger, policy Policy, now time.Time) models.ReconciliationSnapshot {
	s := l.Session
	snap := models.ReconciliationSnapshot{
		SessionID:    s.ID,
		OpeningFloat: s.OpeningFloat,
		SalesByMethod: models.SalesByMethod{
			Cash:     decimal.Zero,
			Card:     decimal.Zero,
			Transfer: decimal.Zero,
		},
		ManualCashIn:  decimal.Zero,
		ManualCashOut: decimal.Zero,
		CashRefunds:   decimal.Zero,
		CashVoids:     decimal.Zero,
		Warnings:      []models.Warning{},
		ComputedAt:    now,
	}

	events := []balanceEvent{{at: s.OpenedAt, delta: s.OpeningFloat}}
	sales := 0

	for _, p := range l.Payments {
		if p.CashSessionID != s.ID || !settled(p.Status) {
			continue
		}
		sales++
		switch p.Method {
		case models.PaymentMethodCash:
			snap.SalesByMethod.Cash = snap.SalesByMethod.Cash.Add(p.Amount)
			events = append(events, balanceEvent{at: paidAt(p), delta: p.Amount})
		case models.PaymentMethodCard:
			snap.SalesByMethod.Card = snap.SalesByMethod.Card.Add(p.Amount)
		case models.PaymentMethodTransfer:
			snap.SalesByMethod.Transfer = snap.SalesByMethod.Transfer.Add(p.Amount)
		}
		if p.Status == models.PaymentStatusVoid {
			snap.VoidCount++
			if p.Method == models.PaymentMethodCash {
				snap.CashVoids = snap.CashVoids.Add(p.Amount)
				events = append(events, balanceEvent{at: reversedAt(p), delta: p.Amount.Neg()})
			}
		}
	}

	for _, p := range l.Refunds {
		if p.Status != models.PaymentStatusRefunded || p.ReversalSessionID == nil || *p.ReversalSessionID != s.ID {
			continue
		}
		snap.RefundCount++
		if p.Method == models.PaymentMethodCash {
			snap.CashRefunds = snap.CashRefunds.Add(p.Amount)
			events = append(events, balanceEvent{at: reversedAt(p), delta: p.Amount.Neg()})
		}
	}

	missingReason := 0
	for _, m := range s.Movements {
		if m.Kind != models.MovementKindManual {
			continue
		}
		if models.CleanText(m.Reason) == "" {
			missingReason++
		}
		switch m.Direction {
		case models.MovementIn:
			snap.ManualCashIn = snap.ManualCashIn.Add(m.Amount)
			events = append(events, balanceEvent{at: m.CreatedAt, delta: m.Amount})
		case models.MovementOut:
			snap.ManualCashOut = snap.ManualCashOut.Add(m.Amount)
			events = append(events, balanceEvent{at: m.CreatedAt, delta: m.Amount.Neg()})
		}
	}

	snap.ExpectedCash = s.OpeningFloat.
		Add(snap.SalesByMethod.Cash).
		Add(snap.ManualCashIn).
		Sub(snap.ManualCashOut).
		Sub(snap.CashRefunds).
		Sub(snap.CashVoids)

	// Uyarılar sabit sırada
	if w, ok := reversalWarning(snap.VoidCount+snap.RefundCount, policy.ReversalAlertThreshold); ok {
		snap.Warnings = append(snap.Warnings, w)
	}
	if low := lowestBalance(events); low.IsNegative() {
		snap.Warnings = append(snap.Warnings, models.Warning{
			Code:     models.WarningNegativeBalance,
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Kasa bakiyesi oturum içinde %s seviyesine düştü", low.StringFixed(2)),
		})
	}
	if missingReason > 0 {
		snap.Warnings = append(snap.Warnings, models.Warning{
			Code:     models.WarningMissingMovementReason,
			Severity: models.SeverityWarn,
			Message:  fmt.Sprintf("%d kasa hareketinde gerekçe yok", missingReason),
		})
	}
	if sales == 0 {
		snap.Warnings = append(snap.Warnings, models.Warning{
			Code:     models.WarningNoSales,
			Severity: models.SeverityInfo,
			Message:  "Bu oturumda satış yok",
		})
	}

	return snap
}

func settled(st models.PaymentStatus) bool {
	switch st {
	case models.PaymentStatusPaid, models.PaymentStatusVoid, models.PaymentStatusRefunded:
		return true
	case models.PaymentStatusPending:
		return false
	default:
		return false
	}
}

func paidAt(p models.Payment) time.Time {
	if p.PaidAt != nil {
		return *p.PaidAt
	}
	return p.CreatedAt
}

func reversedAt(p models.Payment) time.Time {
	if p.ReversedAt != nil {
		return *p.ReversedAt
	}
	return p.UpdatedAt
}

func reversalWarning(count, threshold int) (models.Warning, bool) {
	if threshold <= 0 || count < threshold {
		return models.Warning{}, false
	}
	sev := models.SeverityWarn
	if count >= 2*threshold {
		sev = models.SeverityCritical
	}
	return models.Warning{
		Code:     models.WarningHighReversalCount,
		Severity: sev,
		Message:  fmt.Sprintf("Oturumda %d iptal/iade var (eşik %d)", count, threshold),
	}, true
}

// lowestBalance: olayları zaman sırasıyla oynatıp görülen en düşük bakiyeyi döndürür.
// Aynı andaki olaylarda girişler önce işlenir.
func lowestBalance(events []balanceEvent) decimal.Decimal {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].at.Equal(events[j].at) {
			return events[i].delta.GreaterThan(events[j].delta)
		}
		return events[i].at.Before(events[j].at)
	})
	balance := decimal.Zero
	low := decimal.Zero
	for _, e := range events {
		balance = balance.Add(e.delta)
		if balance.LessThan(low) {
			low = balance
		}
	}
	return low
}
