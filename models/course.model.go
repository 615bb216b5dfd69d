package models

import "gorm.io/gorm"

// Course represents a sellable course. Prices are kept in minor currency
// units (kopecks); checkout always reads the base amount from here, never
// from the client.
type Course struct {
	gorm.Model
	Title            string `json:"title"`
	Description      string `json:"description"`
	Author           string `json:"author"`
	PriceAmount      int64  `json:"price_amount" gorm:"default:0"`
	PromoPriceAmount *int64 `json:"promo_price_amount"` // nil = no promo price
	Status           string `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	ThumbnailURL     string `json:"thumbnail_url"`
	IsPublished      bool   `json:"is_published" gorm:"default:false"`
	IsDeleted        bool   `gorm:"default:false"`
}
