package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core/apperror"
	"saldo/internal/core/types"
)

func TestPaymentState_StatusDerivation(t *testing.T) {
	tests := []struct {
		name   string
		total  string
		paid   string
		status PaymentStatus
	}{
		{"zero paid is unpaid", "300", "0", StatusUnpaid},
		{"partially paid", "300", "100", StatusPartial},
		{"fully paid", "300", "300", StatusPaid},
		{"zero total is paid when nothing owed", "0", "0", StatusUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := PaymentState{
				TotalAmount: types.MustMoney(tt.total),
				PaidAmount:  types.MustMoney(tt.paid),
			}
			assert.Equal(t, tt.status, s.PaymentStatus())
		})
	}
}

func TestPaymentState_ApplyPaymentSequence(t *testing.T) {
	s := NewPaymentState(types.MustMoney("300"))

	status, err := s.ApplyPayment(types.MustMoney("100"))
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, status)

	status, err = s.ApplyPayment(types.MustMoney("100"))
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, status)

	status, err = s.ApplyPayment(types.MustMoney("100"))
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, status)
	assert.True(t, s.PaidAmount.Equal(types.MustMoney("300")))
	assert.True(t, s.RemainingAmount().IsZero())
}

func TestPaymentState_ApplyPaymentRejectsOverpayment(t *testing.T) {
	s := NewPaymentState(types.MustMoney("100"))

	_, err := s.ApplyPayment(types.MustMoney("150"))
	require.Error(t, err)
	assert.True(t, apperror.IsAllocationExceedsRemaining(err))

	// state untouched after rejection
	assert.True(t, s.PaidAmount.IsZero())
	assert.Equal(t, StatusUnpaid, s.PaymentStatus())
}

func TestPaymentState_ApplyPaymentRejectsNonPositive(t *testing.T) {
	s := NewPaymentState(types.MustMoney("100"))

	_, err := s.ApplyPayment(types.Zero())
	assert.True(t, apperror.IsInvalidAmount(err))

	_, err = s.ApplyPayment(types.MustMoney("-5"))
	assert.True(t, apperror.IsInvalidAmount(err))
}

func TestPaymentState_ValidateAmounts(t *testing.T) {
	s := PaymentState{
		TotalAmount: types.MustMoney("100"),
		PaidAmount:  types.MustMoney("150"),
	}
	assert.Error(t, s.ValidateAmounts())

	s.PaidAmount = types.MustMoney("100")
	assert.NoError(t, s.ValidateAmounts())
}
