package controller

import (
	"errors"
	"net/http"

	"drawchat/model"
	"drawchat/service"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	Chats *service.ChatService
}

func NewChatController(chats *service.ChatService) *ChatController {
	return &ChatController{Chats: chats}
}

// Chat 流式返回生成文本；conversation_id 缺省时懒创建会话
func (ctrl *ChatController) Chat(c *gin.Context) {
	var input struct {
		Message        string `json:"message" binding:"required"`
		Option         string `json:"option"`
		UserId         uint   `json:"user_id" binding:"required"`
		ConversationId *uint  `json:"conversation_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, errorBody("Invalid input"))
		return
	}

	err := ctrl.Chats.StreamChat(c, &service.ChatInput{
		Message:        input.Message,
		Option:         input.Option,
		UserId:         input.UserId,
		ConversationId: input.ConversationId,
	})
	if err != nil {
		if errors.Is(err, model.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, errorBody("conversation not found"))
			return
		}
		logger.Warnf("[%s] Failed to stream chat: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to generate response"))
	}
}

// RemoveThink 去掉推理模型输出中的 <think> 块
func (ctrl *ChatController) RemoveThink(c *gin.Context) {
	var input struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid input"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": service.RemoveThink(input.Message)})
}
