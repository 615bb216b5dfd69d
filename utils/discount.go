package utils

import "math"

// PromoDiscount is the discount shape of a validated promo code.
// Percent is 0-100; Amount is in minor currency units. When both are set,
// Percent wins (see DESIGN.md).
type PromoDiscount struct {
	Percent float64
	Amount  int64
}

// DiscountFor returns the discount in minor units for the given base amount.
// Percent discounts round half-up on the discount itself, not on the final
// amount. The discount is capped at the base amount.
func DiscountFor(baseAmount int64, promo *PromoDiscount) int64 {
	if promo == nil || baseAmount <= 0 {
		return 0
	}

	var discount int64
	switch {
	case promo.Percent > 0:
		discount = int64(math.Round(float64(baseAmount) * promo.Percent / 100))
	case promo.Amount > 0:
		discount = promo.Amount
	}

	if discount > baseAmount {
		return baseAmount
	}
	return discount
}

// CalculateFinalAmount maps a base amount and an optional promo to the
// payable amount. The result never goes negative.
func CalculateFinalAmount(baseAmount int64, promo *PromoDiscount) int64 {
	if baseAmount < 0 {
		return 0
	}
	return baseAmount - DiscountFor(baseAmount, promo)
}
