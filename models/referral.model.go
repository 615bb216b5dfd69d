package models

import "gorm.io/gorm"

// ReferralConversion records a purchase attributed to a referral code.
// The observation itself lives in the TTL visit store until checkout
// consumes it; only converted visits are persisted.
type ReferralConversion struct {
	gorm.Model
	Code      string `json:"code" gorm:"index;not null"`
	PaymentID uint   `json:"payment_id" gorm:"index;not null"`
	Amount    int64  `json:"amount" gorm:"not null"` // minor currency units
	IsDeleted bool   `gorm:"default:false"`
}
