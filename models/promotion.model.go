package models

import "gorm.io/gorm"

// Promotion is a special checkout offer addressed by a stable key
// (e.g. "first_100", "bundle"). TotalSlots = 0 means uncapped.
// UsedSlots only moves forward, and only from confirmed payments.
type Promotion struct {
	gorm.Model
	Key         string `json:"key" gorm:"uniqueIndex;not null"`
	Title       string `json:"title" gorm:"default:''"`
	PriceAmount int64  `json:"price_amount" gorm:"not null"` // minor currency units
	TotalSlots  int    `json:"total_slots" gorm:"default:0"`
	UsedSlots   int    `json:"used_slots" gorm:"default:0"`
	CourseID    *uint  `json:"course_id" gorm:"index"` // course granted on purchase
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	IsDeleted   bool   `gorm:"default:false"`
}

// AvailableSlots reports the remaining capacity of a capped offer; it never
// goes negative even if UsedSlots overshoots. Only meaningful when
// TotalSlots > 0 — uncapped offers have no slot count to report.
func (p *Promotion) AvailableSlots() int {
	if p.TotalSlots == 0 {
		return 0
	}
	if p.UsedSlots >= p.TotalSlots {
		return 0
	}
	return p.TotalSlots - p.UsedSlots
}

// Available reports whether the offer can still be sold. Uncapped
// promotions are always available while active.
func (p *Promotion) Available() bool {
	if !p.IsActive {
		return false
	}
	if p.TotalSlots == 0 {
		return true
	}
	return p.UsedSlots < p.TotalSlots
}
