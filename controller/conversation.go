package controller

import (
	"errors"
	"net/http"
	"strconv"

	"drawchat/model"
	"drawchat/service"

	"github.com/gin-gonic/gin"
)

type ConversationController struct {
	Conversations *service.ConversationService
}

func NewConversationController(conversations *service.ConversationService) *ConversationController {
	return &ConversationController{Conversations: conversations}
}

func queryUserId(c *gin.Context) (uint, bool) {
	raw := c.Query("user_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errorBody("Invalid user_id"))
		return 0, false
	}
	return uint(id), true
}

func paramConversationId(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errorBody("Invalid conversation id"))
		return 0, false
	}
	return uint(id), true
}

func (ctrl *ConversationController) List(c *gin.Context) {
	userId, ok := queryUserId(c)
	if !ok {
		return
	}
	conversations, err := ctrl.Conversations.List(userId)
	if err != nil {
		logger.Warnf("[%s] Failed to list conversations: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to list conversations"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "conversations": conversations})
}

func (ctrl *ConversationController) Messages(c *gin.Context) {
	userId, ok := queryUserId(c)
	if !ok {
		return
	}
	id, ok := paramConversationId(c)
	if !ok {
		return
	}
	conversation, messages, err := ctrl.Conversations.GetWithMessages(id, userId)
	if err != nil {
		if errors.Is(err, model.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, errorBody("conversation not found"))
			return
		}
		logger.Warnf("[%s] Failed to fetch messages: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to fetch messages"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"conversation": conversation,
		"messages":     messages,
	})
}

func (ctrl *ConversationController) Create(c *gin.Context) {
	var input struct {
		UserId uint   `json:"user_id" binding:"required"`
		Title  string `json:"title"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid input"))
		return
	}
	conversation, err := ctrl.Conversations.Create(input.UserId, input.Title)
	if err != nil {
		logger.Warnf("[%s] Failed to create conversation: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to create conversation"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "conversation": conversation})
}

func (ctrl *ConversationController) Rename(c *gin.Context) {
	id, ok := paramConversationId(c)
	if !ok {
		return
	}
	var input struct {
		UserId uint   `json:"user_id" binding:"required"`
		Title  string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid input"))
		return
	}
	conversation, err := ctrl.Conversations.Rename(id, input.UserId, input.Title)
	if err != nil {
		if errors.Is(err, model.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, errorBody("conversation not found"))
			return
		}
		logger.Warnf("[%s] Failed to rename conversation: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to rename conversation"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "conversation": conversation})
}

func (ctrl *ConversationController) Delete(c *gin.Context) {
	userId, ok := queryUserId(c)
	if !ok {
		return
	}
	id, ok := paramConversationId(c)
	if !ok {
		return
	}
	if err := ctrl.Conversations.Delete(id, userId); err != nil {
		if errors.Is(err, model.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, errorBody("conversation not found"))
			return
		}
		logger.Warnf("[%s] Failed to delete conversation: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to delete conversation"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Conversation deleted"})
}

func (ctrl *ConversationController) Search(c *gin.Context) {
	userId, ok := queryUserId(c)
	if !ok {
		return
	}
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, errorBody("Missing query"))
		return
	}
	results, err := ctrl.Conversations.Search(userId, query)
	if err != nil {
		logger.Warnf("[%s] Failed to search: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to search"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": results})
}
