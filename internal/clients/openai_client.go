package clients

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests
	defaultOpenAIModel   = openai.GPT4oMini
)

var (
	openAIClientInstance *OpenAIClient
	openAIOnce           sync.Once
)

type OpenAIClient struct {
	Client *openai.Client
	model  string
}

func GetOpenAIClient() *OpenAIClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		slog.Error("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
		panic("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
	}
	openAIOnce.Do(func() {
		config := openai.DefaultConfig(apiKey)
		httpClient := &http.Client{
			Timeout: openAIRequestTimeout,
		}
		config.HTTPClient = httpClient

		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			model = defaultOpenAIModel
		}

		openAIClientInstance = &OpenAIClient{
			Client: openai.NewClientWithConfig(config),
			model:  model,
		}
		slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
			slog.Duration("timeout", openAIRequestTimeout),
			slog.String("model", model))
	})
	return openAIClientInstance
}

// Complete sends a single-shot prompt and returns the raw reply text. No
// conversation state is shared across calls.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("[OpenAIClient] completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
