package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	LoginMethodPassword = "PASSWORD"
	LoginMethodTelegram = "TELEGRAM"
	LoginMethodVK       = "VK"
)

type User struct {
	gorm.Model
	Name                string     `gorm:"default:''"`
	Email               string     `gorm:"index;default:''"`
	Phone               string     `gorm:"default:''"`
	Role                string     `gorm:"default:'USER'"` // USER, ADMIN
	LoginMethod         string     `gorm:"default:'PASSWORD'"`
	Password            string     `gorm:"default:''"` // bcrypt hash, empty for external logins
	TelegramID          *int64     `gorm:"uniqueIndex"`
	VkID                *int64     `gorm:"uniqueIndex"`
	IsEmailVerified     bool       `gorm:"default:false"`
	LastLogin           time.Time  `gorm:"default:NULL"`
	FailedLoginAttempts int        `gorm:"default:0"`
	LastFailedLogin     *time.Time `json:"last_failed_login"`
	IsBlocked           bool       `gorm:"default:false"`
	BlockedUntil        *time.Time `json:"blocked_until"`
	IsDeleted           bool       `gorm:"default:false"`
}
