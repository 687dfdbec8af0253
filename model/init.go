package model

import "gorm.io/gorm"

func InstallDB(db *gorm.DB) {
	if err := db.AutoMigrate(
		&User{},
		&Conversation{},
		&Message{},
		&BlacklistedToken{}); err != nil {
		panic(err)
	}
}
