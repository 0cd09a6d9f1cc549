package cashsession

import (
	"context"

	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrStepOrder    = apperr.Validation("kapanış adımları sırayla tamamlanmalı")
	ErrNoteRequired = apperr.Validation("fark tolerans dışında veya kritik uyarı var: kapanış notu zorunlu")
)

// CloseInput: kapanış çağrısının tipli girdisi
type CloseInput struct {
	SessionID   uint            `json:"session_id"`
	CountedCash decimal.Decimal `json:"counted_cash"`
	KeepFloat   decimal.Decimal `json:"keep_float"`
	Note        string          `json:"note"`
}

// CloseFigures: sayım sonrası hesaplanan değerler
type CloseFigures struct {
	Expected     decimal.Decimal `json:"expected_cash"`
	Counted      decimal.Decimal `json:"counted_cash"`
	Difference   decimal.Decimal `json:"difference"`
	KeepFloat    decimal.Decimal `json:"keep_float"`
	Withdrawal   decimal.Decimal `json:"withdrawal"`
	NoteRequired bool            `json:"note_required"`
}

// ComputeClose: difference = counted - expected, withdrawal = max(0, counted - keep).
// Not şartı: |difference| > tolerans veya kritik uyarı. Eşitlik not istemez.
func ComputeClose(snap models.ReconciliationSnapshot, policy Policy, counted, keep decimal.Decimal) CloseFigures {
	diff := counted.Sub(snap.ExpectedCash)
	withdrawal := counted.Sub(keep)
	if withdrawal.IsNegative() {
		withdrawal = decimal.Zero
	}
	return CloseFigures{
		Expected:     snap.ExpectedCash,
		Counted:      counted,
		Difference:   diff,
		KeepFloat:    keep,
		Withdrawal:   withdrawal,
		NoteRequired: diff.Abs().GreaterThan(policy.Tolerance) || snap.HasCritical(),
	}
}

// ValidateClose: kapanış çağrısı kabul edilmeden önceki kesin ön koşullar
func ValidateClose(fig CloseFigures, note string) error {
	if fig.Counted.IsNegative() {
		return apperr.Validation("sayılan nakit negatif olamaz")
	}
	if fig.KeepFloat.IsNegative() {
		return apperr.Validation("bırakılan fon negatif olamaz")
	}
	if fig.NoteRequired && models.CleanText(note) == "" {
		return ErrNoteRequired
	}
	return nil
}

type CloseStep int

const (
	StepReview    CloseStep = iota // mutabakat gösteriliyor
	StepCounted                    // sayım girildi
	StepSettled                    // fon ve not girildi
	StepCommitted                  // kapandı
)

func (s CloseStep) String() string {
	switch s {
	case StepReview:
		return "review"
	case StepCounted:
		return "counted"
	case StepSettled:
		return "settled"
	case StepCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// CloseFlow: çok adımlı kapanış. Her adım bir öncekinin doğrulanmasından sonra erişilebilir.
type CloseFlow struct {
	backend  Backend
	actor    models.Actor
	session  *models.CashSession
	policy   Policy
	snapshot models.ReconciliationSnapshot

	step    CloseStep
	figures CloseFigures
	note    string
	closed  *models.CashSession
}

func (f *CloseFlow) Step() CloseStep { return f.step }

// Snapshot: 1. adım, salt okunur mutabakat
func (f *CloseFlow) Snapshot() models.ReconciliationSnapshot { return f.snapshot }

func (f *CloseFlow) Figures() CloseFigures { return f.figures }

// Count: 2. adım
func (f *CloseFlow) Count(counted decimal.Decimal) error {
	if f.step != StepReview && f.step != StepCounted {
		return ErrStepOrder
	}
	if counted.IsNegative() {
		return apperr.Validation("sayılan nakit negatif olamaz")
	}
	f.figures = ComputeClose(f.snapshot, f.policy, counted, decimal.Zero)
	f.step = StepCounted
	return nil
}

// Settle: 3. adım. Not şartı burada zorlanır.
func (f *CloseFlow) Settle(keep decimal.Decimal, note string) error {
	if f.step != StepCounted && f.step != StepSettled {
		return ErrStepOrder
	}
	fig := ComputeClose(f.snapshot, f.policy, f.figures.Counted, keep)
	if err := ValidateClose(fig, note); err != nil {
		return err
	}
	f.figures = fig
	f.note = models.CleanText(note)
	f.step = StepSettled
	return nil
}

// Commit: 4. adım. Backend mutabakatı transaction içinde yeniden hesaplar ve koşulları tekrar uygular.
func (f *CloseFlow) Commit(ctx context.Context) (*models.CashSession, error) {
	if f.step == StepCommitted {
		return f.closed, nil
	}
	if f.step != StepSettled {
		return nil, ErrStepOrder
	}
	closed, err := f.backend.CloseSession(ctx, f.actor, CloseInput{
		SessionID:   f.session.ID,
		CountedCash: f.figures.Counted,
		KeepFloat:   f.figures.KeepFloat,
		Note:        f.note,
	})
	if err != nil {
		return nil, err
	}
	f.closed = closed
	f.step = StepCommitted
	return closed, nil
}
