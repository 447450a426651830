package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// claudeMaxTokens bounds response length for tailoring-sized documents.
const claudeMaxTokens = 8192

// ClaudeClient implements Client for Anthropic Claude
type ClaudeClient struct {
	client anthropic.Client
}

// NewClaudeClient creates a new Claude client
func NewClaudeClient(apiKey string) *ClaudeClient {
	return &ClaudeClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Complete generates text content using the named Claude model
func (c *ClaudeClient) Complete(ctx context.Context, prompt, model string, temperature float32) (string, error) {
	if model == "" {
		return "", fmt.Errorf("model name is required")
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   claudeMaxTokens,
		Temperature: anthropic.Float(float64(temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text blocks in response")
	}

	return strings.Join(parts, ""), nil
}

// Close releases resources held by the client. The Anthropic client holds no
// long-lived connections.
func (c *ClaudeClient) Close() error {
	return nil
}
