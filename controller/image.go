package controller

import (
	"errors"
	"net/http"

	"drawchat/model"
	"drawchat/service"

	"github.com/gin-gonic/gin"
)

type ImageController struct {
	Images *service.ImageService
}

func NewImageController(images *service.ImageService) *ImageController {
	return &ImageController{Images: images}
}

// Image 同步生成图片；带 conversation_id 时把结果作为消息落库
func (ctrl *ImageController) Image(c *gin.Context) {
	var input struct {
		Message        string `json:"message" binding:"required"`
		UserId         uint   `json:"user_id" binding:"required"`
		ConversationId *uint  `json:"conversation_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, errorBody("Invalid input"))
		return
	}

	imgBase64, err := ctrl.Images.GenerateAndPersist(c.GetString("requestId"), &service.ImageInput{
		Message:        input.Message,
		UserId:         input.UserId,
		ConversationId: input.ConversationId,
	})
	if err != nil {
		if errors.Is(err, model.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, errorBody("conversation not found"))
			return
		}
		logger.Warnf("[%s] Failed to generate image: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, errorBody("Failed to generate image"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Data received successfully",
		"respond": gin.H{"img_base64": imgBase64},
	})
}
