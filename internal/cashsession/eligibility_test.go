package cashsession

import (
	"testing"

	"adisyon-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestReversalFor(t *testing.T) {
	a := &models.CashSession{ID: 1, Status: models.CashSessionOpen}
	b := &models.CashSession{ID: 2, Status: models.CashSessionOpen}
	paidInA := models.Payment{ID: 5, CashSessionID: 1, Status: models.PaymentStatusPaid}

	assert.Equal(t, ReversalVoid, ReversalFor(paidInA, a))
	assert.Equal(t, ReversalRefund, ReversalFor(paidInA, b))
	assert.Equal(t, ReversalRefund, ReversalFor(paidInA, nil))

	closedA := &models.CashSession{ID: 1, Status: models.CashSessionClosed}
	assert.Equal(t, ReversalRefund, ReversalFor(paidInA, closedA))

	voided := paidInA
	voided.Status = models.PaymentStatusVoid
	assert.Equal(t, ReversalNone, ReversalFor(voided, a))
}
