package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"drawchat/model"

	"gorm.io/gorm"
)

type ImageService struct {
	DB      *gorm.DB
	BaseURL string
	Client  *http.Client
}

type ImageInput struct {
	Message        string
	UserId         uint
	ConversationId *uint
}

// Generate 同步调用图像生成接口，返回 base64 编码的图片
func (s *ImageService) Generate(requestId string, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	resp, err := s.Client.Post(s.BaseURL+"/image", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to request image api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var respond struct {
		Status  string `json:"status"`
		Respond struct {
			ImgBase64 string `json:"img_base64"`
		} `json:"respond"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respond); err != nil {
		return "", fmt.Errorf("failed to decode image api response: %w", err)
	}
	if respond.Respond.ImgBase64 == "" {
		return "", fmt.Errorf("image api returned empty payload")
	}
	return respond.Respond.ImgBase64, nil
}

// GenerateAndPersist 带会话 id 时先校验归属，成功后把图片作为一条
// assistant 消息落库；不带会话 id 只生成不落库。
func (s *ImageService) GenerateAndPersist(requestId string, input *ImageInput) (string, error) {
	var conversation *model.Conversation
	if input.ConversationId != nil {
		var err error
		conversation, err = model.GetConversation(s.DB, *input.ConversationId, input.UserId)
		if err != nil {
			return "", err
		}
	}

	imgBase64, err := s.Generate(requestId, input.Message)
	if err != nil {
		return "", err
	}

	if conversation != nil {
		imageTurn := &model.Message{
			UserId:         input.UserId,
			ConversationId: conversation.ID,
			Role:           model.RoleAssistant,
			Content:        input.Message,
			HasImage:       true,
			ImageData:      imgBase64,
		}
		if err := model.AppendMessage(s.DB, imageTurn); err != nil {
			logger.Warnf("[%s] create image message for db error, %s", requestId, err)
			return "", err
		}
	}
	return imgBase64, nil
}
