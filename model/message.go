package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId         uint      `json:"user_id" gorm:"index:idx_user_id_conversation_id_created_at"`
	ConversationId uint      `json:"conversation_id" gorm:"not null;index:idx_user_id_conversation_id_created_at"`
	Role           string    `gorm:"type:varchar(64)" json:"role"`
	Content        string    `gorm:"type:text" json:"content"`
	HasImage       bool      `json:"has_image" gorm:"default:false"`
	ImageData      string    `gorm:"type:longtext" json:"image_data,omitempty"`
	CreatedAt      time.Time `json:"created_at" gorm:"index:idx_user_id_conversation_id_created_at"`
}

// AppendMessage 追加一条消息并在同一事务内刷新会话的 updated_at
func AppendMessage(db *gorm.DB, message *Message) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		if err := tx.Model(&Conversation{}).
			Where("id = ?", message.ConversationId).
			Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("failed to touch conversation: %w", err)
		}
		return nil
	})
}

func ListMessages(db *gorm.DB, conversationId uint, userId uint) ([]Message, error) {
	var messages []Message
	err := db.Where("conversation_id = ? AND user_id = ?", conversationId, userId).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, nil
}

func SearchMessages(db *gorm.DB, userId uint, query string) ([]Message, error) {
	var messages []Message
	err := db.Where("user_id = ? AND content LIKE ?", userId, "%"+query+"%").
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	return messages, nil
}

func CountMessagesSince(db *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := db.Model(&Message{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
