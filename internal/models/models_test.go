package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus_RejectsUnknown(t *testing.T) {
	st, err := ParseOrderStatus(" IN_PREP ")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusInPrep, st)

	_, err = ParseOrderStatus("cooking")
	assert.Error(t, err)
}

func TestEnumsRejectUnknownInJSON(t *testing.T) {
	var body struct {
		Method PaymentMethod `json:"method"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"method":"crypto"}`), &body))
	require.NoError(t, json.Unmarshal([]byte(`{"method":"card"}`), &body))
	assert.Equal(t, PaymentMethodCard, body.Method)

	var mode struct {
		Mode OperationMode `json:"mode"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"mode":"drive_thru"}`), &mode))
}

func TestRecomputeTotals(t *testing.T) {
	o := Order{
		Discount: decimal.NewFromInt(5),
		Items: []OrderItem{
			{UnitPrice: decimal.RequireFromString("12.50"), Quantity: 2},
			{UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		},
	}
	o.RecomputeTotals()

	assert.True(t, o.Items[0].LineTotal.Equal(decimal.NewFromInt(25)))
	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(35)))
	assert.True(t, o.Total.Equal(decimal.NewFromInt(30)))

	o.Discount = decimal.NewFromInt(100)
	o.RecomputeTotals()
	assert.True(t, o.Total.IsZero(), "indirim toplamı negatife düşürmemeli")
}

func TestPaidTotal(t *testing.T) {
	payments := []Payment{
		{Amount: decimal.NewFromInt(60), Status: PaymentStatusPaid},
		{Amount: decimal.NewFromInt(30), Status: PaymentStatusVoid},
		{Amount: decimal.NewFromInt(15), Status: PaymentStatusPaid},
	}
	assert.True(t, PaidTotal(payments).Equal(decimal.NewFromInt(75)))
	assert.True(t, HasPaid(payments))
	assert.False(t, HasPaid(payments[1:2]))
}

func TestCleanText(t *testing.T) {
	// "e" + birleşik akut vurgu -> tek "é"
	assert.Equal(t, "caf\u00e9", CleanText("  cafe\u0301 \n"))
	assert.Equal(t, "", CleanText(" \t "))
}
