package platform

import (
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// InitLLMClient 构建指向 DeepSeek 的 OpenAI 兼容客户端
func InitLLMClient() *openai.Client {
	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.deepseek.com/"
	}
	return openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(os.Getenv("LLM_API_KEY")),
	)
}
