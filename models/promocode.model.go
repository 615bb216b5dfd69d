package models

import (
	"time"

	"gorm.io/gorm"
)

// PromoCode represents a redeemable discount code.
// Codes are stored uppercase and matched case-insensitively.
// Exactly one of DiscountPercent/DiscountAmount is expected to be non-zero;
// when both are set, percent wins.
type PromoCode struct {
	gorm.Model
	Code               string     `json:"code" gorm:"uniqueIndex;not null"`
	Description        string     `json:"description" gorm:"default:''"`
	PromoType          string     `json:"promo_type" gorm:"default:'GENERAL'"` // GENERAL, PERSONAL, REFERRAL
	DiscountPercent    float64    `json:"discount_percent" gorm:"default:0"`   // 0-100
	DiscountAmount     int64      `json:"discount_amount" gorm:"default:0"`    // minor currency units
	MaxActivations     int        `json:"max_activations" gorm:"default:0"`    // 0 = unlimited
	CurrentActivations int        `json:"current_activations" gorm:"default:0"`
	IsActive           bool       `json:"is_active" gorm:"default:true"`
	ValidFrom          *time.Time `json:"valid_from"`
	ValidUntil         *time.Time `json:"valid_until"`
	CourseID           *uint      `json:"course_id" gorm:"index"` // nil = applies to any course
	IsDeleted          bool       `gorm:"default:false"`
}
