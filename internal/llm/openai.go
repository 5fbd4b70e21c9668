package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAIModel       = openai.GPT4oMini
	openAICallTimeout = 15 * time.Second
)

// OpenAIClient narrates participant rationales via the Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{client: openai.NewClient(apiKey)}
}

func (c *OpenAIClient) Deliberate(ctx context.Context, persona, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, openAICallTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       openAIModel,
		Temperature: 0.3,
		MaxTokens:   200,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPromptFor(persona)},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
