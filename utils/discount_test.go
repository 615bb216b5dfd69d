package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateFinalAmountNoPromo(t *testing.T) {
	assert.Equal(t, int64(169900), CalculateFinalAmount(169900, nil))
	assert.Equal(t, int64(0), CalculateFinalAmount(0, nil))
}

func TestCalculateFinalAmountPercent(t *testing.T) {
	// 1699.00 with 15% off: discount 254.85, payable 1444.15
	promo := &PromoDiscount{Percent: 15}
	assert.Equal(t, int64(25485), DiscountFor(169900, promo))
	assert.Equal(t, int64(144415), CalculateFinalAmount(169900, promo))

	// 100% off
	assert.Equal(t, int64(0), CalculateFinalAmount(169900, &PromoDiscount{Percent: 100}))
}

func TestCalculateFinalAmountPercentRoundsHalfUp(t *testing.T) {
	// 101 * 50% = 50.5, rounds up to 51
	promo := &PromoDiscount{Percent: 50}
	assert.Equal(t, int64(51), DiscountFor(101, promo))
	assert.Equal(t, int64(50), CalculateFinalAmount(101, promo))
}

func TestCalculateFinalAmountFixed(t *testing.T) {
	// 1099.00 promo price with a 500.00 fixed discount
	promo := &PromoDiscount{Amount: 50000}
	assert.Equal(t, int64(59900), CalculateFinalAmount(109900, promo))
}

func TestCalculateFinalAmountClampsAtZero(t *testing.T) {
	promo := &PromoDiscount{Amount: 999999}
	assert.Equal(t, int64(0), CalculateFinalAmount(50000, promo))
}

func TestCalculateFinalAmountPercentWinsOverFixed(t *testing.T) {
	promo := &PromoDiscount{Percent: 10, Amount: 99999}
	assert.Equal(t, int64(90000), CalculateFinalAmount(100000, promo))
}

func TestCalculateFinalAmountZeroDiscountShape(t *testing.T) {
	promo := &PromoDiscount{}
	assert.Equal(t, int64(100000), CalculateFinalAmount(100000, promo))
}

func TestCalculateFinalAmountBounds(t *testing.T) {
	bases := []int64{0, 1, 99, 100, 101, 50000, 169900, 1000000000}
	percents := []float64{0, 1, 15, 33.3, 50, 99, 100}

	for _, base := range bases {
		for _, percent := range percents {
			promo := &PromoDiscount{Percent: percent}
			final := CalculateFinalAmount(base, promo)
			assert.GreaterOrEqual(t, final, int64(0), "base=%d percent=%v", base, percent)
			assert.LessOrEqual(t, final, base, "base=%d percent=%v", base, percent)

			// Pure function: same inputs, same output
			assert.Equal(t, final, CalculateFinalAmount(base, promo))
		}
	}
}

func TestCalculateFinalAmountRemovePromoResetsToBase(t *testing.T) {
	promo := &PromoDiscount{Percent: 15}
	discounted := CalculateFinalAmount(169900, promo)
	assert.NotEqual(t, int64(169900), discounted)
	assert.Equal(t, int64(169900), CalculateFinalAmount(169900, nil))
}
