package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusSucceeded = "SUCCEEDED"
	PaymentStatusCanceled  = "CANCELED"
)

const (
	CheckoutTypeCourse = "course"
	CheckoutTypeTopup  = "topup"
)

// Payment is one checkout attempt. The promo fields are a snapshot taken at
// creation time so the audit trail survives later edits to the code itself.
type Payment struct {
	gorm.Model
	UserID          *uint      `json:"user_id" gorm:"index"`
	CourseID        *uint      `json:"course_id" gorm:"index"`
	CheckoutType    string     `json:"checkout_type" gorm:"not null"` // course, topup, or a promotion key
	PaymentMethod   string     `json:"payment_method" gorm:"not null"`
	BaseAmount      int64      `json:"base_amount" gorm:"not null"`  // minor currency units
	FinalAmount     int64      `json:"final_amount" gorm:"not null"` // after discount
	PromoCodeID     *uint      `json:"promocode_id" gorm:"index"`
	PromoCode       string     `json:"promocode" gorm:"default:''"`
	DiscountPercent float64    `json:"discount_percent" gorm:"default:0"`
	DiscountAmount  int64      `json:"discount_amount" gorm:"default:0"`
	Email           string     `json:"email" gorm:"default:''"`
	Phone           string     `json:"phone" gorm:"default:''"` // normalized, +7...
	ReferralCode    string     `json:"referral_code" gorm:"default:''"`
	Status          string     `json:"status" gorm:"default:'PENDING'"`
	GatewayID       string     `json:"gateway_id" gorm:"uniqueIndex"`
	IdempotenceKey  string     `json:"idempotence_key" gorm:"default:''"`
	ConfirmationURL string     `json:"confirmation_url" gorm:"default:''"`
	GatewayResponse datatypes.JSON `json:"gateway_response"`
	PaidAt          *time.Time `json:"paid_at"`
	IsDeleted       bool       `gorm:"default:false"`
}
