package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$80", 80},
		{"80.00", 80},
		{"80", 80},
		{" $ 129.50 ", 129.5},
		{"AUD 45", 45},
		{"1,250.75", 1250.75},
		{"free", 0},
		{"", 0},
		{"n/a", 0},
		{"-20", 0},
		{"$-5.00", 0},
		{"80 approx", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMoney(tt.in))
		})
	}
}
