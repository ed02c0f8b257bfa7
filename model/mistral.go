package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultMistralURL = "https://api.mistral.ai/v1/chat/completions"

// CompletionClient is implemented by hosted LLM providers.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// MistralClient calls the Mistral chat-completions API.
type MistralClient struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewMistralClient builds the client from MISTRAL_API_KEY and an optional
// MISTRAL_API_URL override.
func NewMistralClient() *MistralClient {
	apiURL := os.Getenv("MISTRAL_API_URL")
	if apiURL == "" {
		apiURL = defaultMistralURL
	}
	apiKey := os.Getenv("MISTRAL_API_KEY")
	if apiKey == "" {
		slog.Default().Warn("MISTRAL_API_KEY is not set, LLM requests will be rejected")
	}
	return &MistralClient{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  "mistral-medium",
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (m *MistralClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: m.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   500,
		Temperature: 0.3,
		TopP:        0.8,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call LLM API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("LLM API returned no choices")
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
