package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// BlacklistedToken 登出后失效的令牌
type BlacklistedToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Token     string    `gorm:"type:varchar(512);unique"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func BlacklistToken(db *gorm.DB, token string) error {
	if err := db.Create(&BlacklistedToken{Token: token}).Error; err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func IsTokenBlacklisted(db *gorm.DB, token string) bool {
	var count int64
	if err := db.Model(&BlacklistedToken{}).Where("token = ?", token).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
