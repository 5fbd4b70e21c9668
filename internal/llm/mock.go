package llm

import (
	"context"
	"sync"
)

// MockClient is a configurable rationale provider for testing. Set Response
// or Err to control what Deliberate returns; calls are recorded for
// assertions.
type MockClient struct {
	Response string
	Err      error

	mu    sync.Mutex
	Calls []MockCall
}

type MockCall struct {
	Persona string
	Prompt  string
}

func NewMockClient() *MockClient {
	return &MockClient{Response: "Mock deliberation"}
}

func (c *MockClient) Deliberate(_ context.Context, persona, prompt string) (string, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, MockCall{Persona: persona, Prompt: prompt})
	c.mu.Unlock()

	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}
