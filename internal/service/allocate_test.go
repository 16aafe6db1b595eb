package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocatePaymentInterestFirst(t *testing.T) {
	tests := []struct {
		name          string
		payment       float64
		interestLeft  float64
		amountLeft    float64
		wantInterest  float64
		wantPrincipal float64
	}{
		{"interest then principal", 15, 10, 500, 10, 5},
		{"interest only", 8, 10, 500, 8, 0},
		{"exact interest", 10, 10, 500, 10, 0},
		{"full settlement", 510, 10, 500, 10, 500},
		{"no interest outstanding", 50, 0, 500, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interestPaid, principalPaid := allocatePayment(tt.payment, tt.interestLeft, tt.amountLeft)
			assert.Equal(t, tt.wantInterest, interestPaid)
			assert.Equal(t, tt.wantPrincipal, principalPaid)
		})
	}
}

func TestAllocatePaymentConservation(t *testing.T) {
	// For any payment not exceeding the total owed, the allocation
	// accounts for every unit of the payment and never exceeds either
	// outstanding balance.
	interestLeft := 37.0
	amountLeft := 412.0
	for payment := 1.0; payment <= interestLeft+amountLeft; payment += 7 {
		interestPaid, principalPaid := allocatePayment(payment, interestLeft, amountLeft)
		assert.InDelta(t, payment, interestPaid+principalPaid, 1e-9)
		assert.LessOrEqual(t, interestPaid, interestLeft)
		assert.LessOrEqual(t, principalPaid, amountLeft)
	}
}

func TestSettled(t *testing.T) {
	assert.True(t, settled(0, 0))
	assert.True(t, settled(0.009, 0.009))
	assert.False(t, settled(0.02, 0))
	assert.False(t, settled(0, 0.02))
	assert.False(t, settled(100, 10))
}
