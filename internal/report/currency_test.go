package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatEUR(t *testing.T) {
	amount := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"nil renders placeholder", nil, "—"},
		{"zero is a real amount", amount(0), "0,00 €"},
		{"thousands separator", amount(1234.56), "1.234,56 €"},
		{"millions", amount(1234567.89), "1.234.567,89 €"},
		{"small amount", amount(7.5), "7,50 €"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatEUR(tt.in))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1.234,56", FormatNumber(1234.56))
	assert.Equal(t, "0,00", FormatNumber(0))
}
