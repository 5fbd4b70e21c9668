package llm

import (
	"fmt"

	"github.com/paysentinel/sentinel/internal/domain"
)

// Provider constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
	ProviderNone      = "none"
)

// NewClient creates a rationale provider by name. "none" returns a nil client:
// participants then keep their deterministic rationale text, which is the
// default deployment mode.
func NewClient(provider, apiKey string) (domain.LLMClient, error) {
	switch provider {
	case ProviderNone, "":
		return nil, nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: openai, anthropic, mock, none)", provider)
	}
}
