package model

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Conversation struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId    uint      `json:"user_id" gorm:"not null;index"`
	Title     string    `gorm:"type:varchar(200)" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `gorm:"foreignKey:ConversationId;constraint:OnDelete:CASCADE" json:"-"`
}

// ConversationSummary 会话列表项，preview 取最后一条消息
type ConversationSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Preview   string    `json:"preview"`
}

var ErrConversationNotFound = errors.New("conversation not found")

const previewRunes = 60

func CreateConversation(db *gorm.DB, conversation *Conversation) error {
	if err := db.Create(conversation).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetConversation 按会话 id 查找，并校验归属用户，防止跨用户访问
func GetConversation(db *gorm.DB, id uint, userId uint) (*Conversation, error) {
	var conversation Conversation
	if err := db.Where("id = ? AND user_id = ?", id, userId).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &conversation, nil
}

func ListConversations(db *gorm.DB, userId uint) ([]ConversationSummary, error) {
	var conversations []Conversation
	if err := db.Where("user_id = ?", userId).Order("updated_at DESC").Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		var last Message
		preview := ""
		err := db.Where("conversation_id = ?", conv.ID).
			Order("created_at DESC, id DESC").First(&last).Error
		if err == nil {
			preview = truncateRunes(last.Content, previewRunes)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to fetch preview: %w", err)
		}
		summaries = append(summaries, ConversationSummary{
			ID:        conv.ID,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
			Preview:   preview,
		})
	}
	return summaries, nil
}

func UpdateConversationTitle(db *gorm.DB, id uint, userId uint, title string) error {
	result := db.Model(&Conversation{}).
		Where("id = ? AND user_id = ?", id, userId).
		Updates(map[string]interface{}{"title": title, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("failed to update conversation title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// DeleteConversation 删除会话并级联删除其全部消息
func DeleteConversation(db *gorm.DB, id uint, userId uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userId).Delete(&Conversation{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete conversation: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConversationNotFound
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		return nil
	})
}

func SearchConversationsByTitle(db *gorm.DB, userId uint, query string) ([]ConversationSummary, error) {
	var conversations []Conversation
	if err := db.Where("user_id = ? AND title LIKE ?", userId, "%"+query+"%").
		Order("updated_at DESC").Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("failed to search conversations: %w", err)
	}
	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summaries = append(summaries, ConversationSummary{
			ID:        conv.ID,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}
	return summaries, nil
}

// PurgeEmptyConversations 清理超过保留期且没有任何消息的会话
func PurgeEmptyConversations(db *gorm.DB, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := db.Where(
		"created_at < ? AND NOT EXISTS (SELECT 1 FROM messages WHERE messages.conversation_id = conversations.id)",
		cutoff,
	).Delete(&Conversation{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge conversations: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func CountConversationsSince(db *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := db.Model(&Conversation{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
