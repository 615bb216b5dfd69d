package models

import (
	"time"

	"gorm.io/gorm"
)

// UserPromoCode is a promo code granted to a specific user (referral reward,
// personal offer). Granted codes were validated server-side when attached, so
// checkout accepts them without a second validation round-trip.
type UserPromoCode struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"index;not null"`
	PromoCodeID uint       `json:"promocode_id" gorm:"index;not null"`
	Source      string     `json:"source" gorm:"default:'MANUAL'"` // MANUAL, REFERRAL, ADMIN
	ConsumedAt  *time.Time `json:"consumed_at"`
	IsDeleted   bool       `gorm:"default:false"`
	User        User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PromoCode   PromoCode  `gorm:"foreignKey:PromoCodeID;constraint:OnDelete:CASCADE"`
}
