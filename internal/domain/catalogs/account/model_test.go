package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"saldo/internal/core/types"
)

func TestAccount_Validate(t *testing.T) {
	ctx := context.Background()

	a := NewAccount("CUST-001", "Acme Ltd", KindCustomer)
	assert.NoError(t, a.Validate(ctx))

	a.CreditLimit = types.MustMoney("-100")
	assert.Error(t, a.Validate(ctx))

	a.CreditLimit = types.Zero()
	a.PaymentTermsDays = -1
	assert.Error(t, a.Validate(ctx))

	a.PaymentTermsDays = 30
	bad := "not-an-email"
	a.Email = &bad
	assert.Error(t, a.Validate(ctx))
}

func TestAccount_DueDate(t *testing.T) {
	a := NewAccount("CUST-002", "Globex", KindCustomer)
	a.PaymentTermsDays = 14

	docDate := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)
	due := a.DueDate(docDate)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), due)
}

func TestAccount_HasCreditLimit(t *testing.T) {
	customer := NewAccount("CUST-003", "Initech", KindCustomer)
	assert.False(t, customer.HasCreditLimit(), "zero limit means unlimited")

	customer.CreditLimit = types.MustMoney("1000")
	assert.True(t, customer.HasCreditLimit())

	supplier := NewAccount("SUPP-001", "Initrode", KindSupplier)
	supplier.CreditLimit = types.MustMoney("1000")
	assert.False(t, supplier.HasCreditLimit(), "limits apply to customers only")
}
