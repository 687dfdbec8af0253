package service

import (
	"fmt"
	"time"

	"drawchat/model"

	"gorm.io/gorm"
)

type ConversationService struct {
	DB *gorm.DB
}

// Resolve 给定可选会话 id，返回要追加消息的会话。
// 不带 id 时为该用户新建一个带时间戳标题的会话。
func (s *ConversationService) Resolve(userId uint, conversationId *uint) (*model.Conversation, error) {
	if conversationId != nil {
		return model.GetConversation(s.DB, *conversationId, userId)
	}
	conversation := &model.Conversation{
		UserId: userId,
		Title:  "对话 " + time.Now().Format("2006-01-02 15:04"),
	}
	if err := model.CreateConversation(s.DB, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *ConversationService) Create(userId uint, title string) (*model.Conversation, error) {
	if title == "" {
		title = "对话 " + time.Now().Format("2006-01-02 15:04")
	}
	conversation := &model.Conversation{UserId: userId, Title: title}
	if err := model.CreateConversation(s.DB, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *ConversationService) List(userId uint) ([]model.ConversationSummary, error) {
	return model.ListConversations(s.DB, userId)
}

// GetWithMessages 返回会话及其按时间排序的全部消息
func (s *ConversationService) GetWithMessages(id uint, userId uint) (*model.Conversation, []model.Message, error) {
	conversation, err := model.GetConversation(s.DB, id, userId)
	if err != nil {
		return nil, nil, err
	}
	messages, err := model.ListMessages(s.DB, id, userId)
	if err != nil {
		return nil, nil, err
	}
	return conversation, messages, nil
}

func (s *ConversationService) Rename(id uint, userId uint, title string) (*model.Conversation, error) {
	if err := model.UpdateConversationTitle(s.DB, id, userId, title); err != nil {
		return nil, err
	}
	return model.GetConversation(s.DB, id, userId)
}

func (s *ConversationService) Delete(id uint, userId uint) error {
	return model.DeleteConversation(s.DB, id, userId)
}

// SearchResults 标题命中的会话与内容命中的消息
type SearchResults struct {
	Conversations []model.ConversationSummary `json:"conversations"`
	Messages      []model.Message             `json:"messages"`
}

func (s *ConversationService) Search(userId uint, query string) (*SearchResults, error) {
	conversations, err := model.SearchConversationsByTitle(s.DB, userId, query)
	if err != nil {
		return nil, err
	}
	messages, err := model.SearchMessages(s.DB, userId, query)
	if err != nil {
		return nil, err
	}
	return &SearchResults{Conversations: conversations, Messages: messages}, nil
}

// PurgeEmpty 定时任务入口，清理超过保留期的空会话
func (s *ConversationService) PurgeEmpty(olderThan time.Duration) error {
	purged, err := model.PurgeEmptyConversations(s.DB, olderThan)
	if err != nil {
		return fmt.Errorf("purge empty conversations: %w", err)
	}
	if purged > 0 {
		logger.Infof("[scheduled task] purged %d empty conversations", purged)
	}
	return nil
}
