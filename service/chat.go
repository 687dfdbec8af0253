package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"drawchat/model"
	"drawchat/platform"

	"github.com/gin-gonic/gin"
	"github.com/openai/openai-go"
	"gorm.io/gorm"
)

var logger = platform.Logger

// OptionCopywriting 文案模式，其它取值一律按图像提示词模式处理
const OptionCopywriting = "文案"

const copywritingTemplate = "你是一名资深文案策划。请围绕下面的主题，撰写一段富有感染力的中文宣传文案，" +
	"语言凝练，适合直接用于社交媒体推广，不要输出任何解释性文字。\n\n主题：%s"

const imagePromptTemplate = "请把下面的描述扩写成一段适合文生图模型使用的英文提示词，" +
	"包含主体、艺术风格、光线、构图和画质等细节，用逗号分隔关键词，直接输出提示词本身，不要附加说明。\n\n描述：%s"

// BuildPrompt 按模式把用户原文包进指令模板
func BuildPrompt(option, message string) string {
	if option == OptionCopywriting {
		return fmt.Sprintf(copywritingTemplate, message)
	}
	return fmt.Sprintf(imagePromptTemplate, message)
}

var thinkBlockRegex = regexp.MustCompile(`(?s)<think>\n.*?\n</think>\n\n`)

// RemoveThink 去掉推理模型输出里的 <think> 块
func RemoveThink(text string) string {
	return thinkBlockRegex.ReplaceAllString(text, "")
}

type ChatService struct {
	DB            *gorm.DB
	LLM           *openai.Client
	Model         string
	Conversations *ConversationService
	// 客户端断开后是否继续拉完上游流并落库
	PersistOnDisconnect bool
}

type ChatInput struct {
	Message        string
	Option         string
	UserId         uint
	ConversationId *uint
}

// StreamChat 把 LLM 的增量输出按到达顺序透传给客户端，同时累积全文；
// 上游流结束后才把完整的 assistant 消息落库。
// 在写响应头之前返回的错误由 controller 转成 JSON 错误响应。
func (s *ChatService) StreamChat(c *gin.Context, input *ChatInput) error {
	requestId := c.GetString("requestId")

	conversation, err := s.Conversations.Resolve(input.UserId, input.ConversationId)
	if err != nil {
		return err
	}

	// 用户回合先落库，再调上游
	userTurn := &model.Message{
		UserId:         input.UserId,
		ConversationId: conversation.ID,
		Role:           model.RoleUser,
		Content:        input.Message,
	}
	if err := model.AppendMessage(s.DB, userTurn); err != nil {
		return err
	}

	w := c.Writer
	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Warnf("[%s] get Writer flusher error", requestId)
		return errors.New("streaming unsupported")
	}

	type promptMessage struct {
		Role    openai.ChatCompletionMessageParamRole
		Content string
	}
	messages := []promptMessage{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: BuildPrompt(input.Option, input.Message)},
	}

	params := openai.ChatCompletionNewParams{
		Messages:    openai.F([]openai.ChatCompletionMessageParamUnion{}),
		Model:       openai.F(s.Model),
		Temperature: openai.F(1.3),
		StreamOptions: openai.F(openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.F(true),
		}),
	}
	for _, message := range messages {
		var content any = message.Content
		params.Messages.Value = append(params.Messages.Value, openai.ChatCompletionMessageParam{
			Role:    openai.F(message.Role),
			Content: openai.F(content),
		})
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Conversation-Id", strconv.FormatUint(uint64(conversation.ID), 10))
	w.WriteHeader(http.StatusOK)

	stream := s.LLM.Chat.Completions.NewStreaming(context.Background(), params)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	var full strings.Builder
	clientGone := false
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) > 0 {
			delta := chunk.Choices[0].Delta.Content
			if delta != "" {
				full.WriteString(delta)
				if !clientGone {
					if _, err := io.WriteString(w, delta); err != nil {
						clientGone = true
						logger.Warnf("[%s] client write error, %s", requestId, err)
						if !s.PersistOnDisconnect {
							logger.Warnf("[%s] client gone, abandoning stream", requestId)
							return nil
						}
					} else {
						flusher.Flush()
					}
				}
			}
		}
		if content, ok := acc.JustFinishedContent(); ok {
			logger.Infof("[%s] finished content: %s", requestId, content)
			break
		}
	}
	if err := stream.Err(); err != nil {
		// 响应已经开始流式输出，只能截断字节流，由客户端感知提前关闭
		logger.Warnf("[%s] stream error, %s", requestId, err)
		return nil
	}

	if full.Len() == 0 {
		logger.Warnf("[%s] upstream produced no content", requestId)
		return nil
	}

	// 流排干之后才写 assistant 回合；写失败仅记录，客户端已拿到全文
	assistantTurn := &model.Message{
		UserId:         input.UserId,
		ConversationId: conversation.ID,
		Role:           model.RoleAssistant,
		Content:        full.String(),
	}
	if err := model.AppendMessage(s.DB, assistantTurn); err != nil {
		logger.Warnf("[%s] create assistant message for db error, %s", requestId, err)
	}
	return nil
}
