package settlement

import (
	"testing"

	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func order(status models.OrderStatus, total int64) *models.Order {
	return &models.Order{ID: 1, Status: status, Total: dec(total)}
}

func paid(id, sessionID uint, amount int64) models.Payment {
	return models.Payment{ID: id, CashSessionID: sessionID, Amount: dec(amount), Status: models.PaymentStatusPaid}
}

func openSess(id uint) *models.CashSession {
	return &models.CashSession{ID: id, Status: models.CashSessionOpen}
}

func TestCharge_Split(t *testing.T) {
	o := order(models.OrderStatusOpen, 100)

	sixty := dec(60)
	amt, err := Charge(o, nil, &sixty)
	require.NoError(t, err)
	assert.True(t, amt.Equal(dec(60)))

	amt, err = Charge(o, []models.Payment{paid(1, 1, 60)}, nil)
	require.NoError(t, err)
	assert.True(t, amt.Equal(dec(40)))

	amt, err = Charge(o, []models.Payment{paid(1, 1, 60), paid(2, 1, 40)}, nil)
	require.NoError(t, err)
	assert.True(t, amt.IsZero())

	over := dec(50)
	_, err = Charge(o, []models.Payment{paid(1, 1, 60)}, &over)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	zero := dec(0)
	_, err = Charge(o, nil, &zero)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCheckVoidRefund_SessionGating(t *testing.T) {
	p := paid(1, 7, 50)

	// Aynı açık oturum: sadece void
	assert.NoError(t, CheckVoid(p, openSess(7)))
	assert.ErrorIs(t, CheckRefund(p, openSess(7)), ErrRefundSameShift)

	// Başka oturum açık: sadece refund
	assert.ErrorIs(t, CheckVoid(p, openSess(8)), ErrVoidOtherShift)
	assert.NoError(t, CheckRefund(p, openSess(8)))

	// Oturum yok: refund
	assert.ErrorIs(t, CheckVoid(p, nil), ErrVoidOtherShift)
	assert.NoError(t, CheckRefund(p, nil))

	var ae *apperr.Error
	require.ErrorAs(t, CheckVoid(p, nil), &ae)
	assert.Equal(t, "refund", ae.Alternative)

	// Nakit iade kasası olmadan yapılamaz
	cash := p
	cash.Method = models.PaymentMethodCash
	assert.ErrorIs(t, CheckRefund(cash, nil), ErrCashRefundNoSession)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(CheckRefund(cash, nil)))
	assert.NoError(t, CheckRefund(cash, openSess(8)))

	p.Status = models.PaymentStatusVoid
	assert.ErrorIs(t, CheckVoid(p, openSess(7)), ErrNotPaid)
	assert.ErrorIs(t, CheckRefund(p, nil), ErrNotPaid)
}

func TestDecide_ExactlyOneAction(t *testing.T) {
	cases := []struct {
		name     string
		status   models.OrderStatus
		payments []models.Payment
		open     *models.CashSession
		want     Action
	}{
		{"no payment open order", models.OrderStatusOpen, nil, openSess(1), ActionCancel},
		{"no payment closed order", models.OrderStatusClosed, nil, nil, ActionNone},
		{"paid same session", models.OrderStatusPaid, []models.Payment{paid(1, 1, 100)}, openSess(1), ActionVoid},
		{"paid other session", models.OrderStatusPaid, []models.Payment{paid(1, 1, 100)}, openSess(2), ActionRefund},
		{"paid no session", models.OrderStatusReady, []models.Payment{paid(1, 1, 100)}, nil, ActionRefund},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(order(tc.status, 100), tc.payments, tc.open)
			assert.Equal(t, tc.want, d.Action)
		})
	}
}

func TestDecide_LatestPaidPayment(t *testing.T) {
	payments := []models.Payment{paid(1, 1, 60), paid(2, 2, 40)}
	d := Decide(order(models.OrderStatusPaid, 100), payments, openSess(2))
	assert.Equal(t, Decision{Action: ActionVoid, PaymentID: 2}, d)

	payments[1].Status = models.PaymentStatusVoid
	d = Decide(order(models.OrderStatusOpen, 100), payments, openSess(2))
	assert.Equal(t, Decision{Action: ActionRefund, PaymentID: 1}, d)
}

func TestAfterReversal(t *testing.T) {
	voided := paid(1, 1, 100)
	voided.Status = models.PaymentStatusVoid

	assert.Equal(t, models.OrderStatusOpen, AfterReversal(order(models.OrderStatusPaid, 100), []models.Payment{voided}))
	assert.Equal(t, models.OrderStatusReady, AfterReversal(order(models.OrderStatusReady, 100), []models.Payment{voided}))
	assert.Equal(t, models.OrderStatusPaid, AfterReversal(order(models.OrderStatusPaid, 100), []models.Payment{voided, paid(2, 1, 100)}))
}
