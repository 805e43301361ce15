package credit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"saldo/internal/core/types"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		balance   string
		limit     string
		candidate string
		want      Severity
	}{
		{"zero limit is unlimited", "5000", "0", "100000", SeverityOK},
		{"negative limit is unlimited", "5000", "-1", "100000", SeverityOK},
		{"projected over limit is blocked", "0", "1000", "1200", SeverityBlocked},
		{"projected at limit is blocked", "0", "1000", "1000", SeverityBlocked},
		{"projected at 80 percent warns", "0", "1000", "850", SeverityWarning},
		{"projected at exactly 80 percent warns", "0", "1000", "800", SeverityWarning},
		{"projected below threshold is ok", "0", "1000", "799", SeverityOK},
		{"existing balance counts toward projection", "600", "1000", "300", SeverityWarning},
		{"existing balance pushes over limit", "900", "1000", "200", SeverityBlocked},
		{"credit balance frees headroom", "-500", "1000", "700", SeverityOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Validate(
				types.MustMoney(tt.balance),
				types.MustMoney(tt.limit),
				types.MustMoney(tt.candidate),
			)
			assert.Equal(t, tt.want, d.Severity)
		})
	}
}

func TestValidate_DecisionDetails(t *testing.T) {
	d := Validate(types.MustMoney("600"), types.MustMoney("1000"), types.MustMoney("300"))

	assert.True(t, d.Projected.Equal(types.MustMoney("900")))
	assert.True(t, d.Limit.Equal(types.MustMoney("1000")))
	assert.True(t, d.Available.Equal(types.MustMoney("100")))
}
