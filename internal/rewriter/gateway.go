package rewriter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultGatewayURL is the OpenAI chat-completions endpoint.
const DefaultGatewayURL = "https://api.openai.com/v1/chat/completions"

// Gateway talks to any OpenAI-compatible chat-completions endpoint over
// plain HTTP with bearer auth.
type Gateway struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

func NewGateway(url, apiKey, model string, timeout time.Duration) (*Gateway, error) {
	if apiKey == "" {
		return nil, errors.New("llm gateway not configured: missing api key")
	}
	if url == "" {
		url = DefaultGatewayURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{
		url:    url,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete makes one POST and returns choices[0].message.content.
func (g *Gateway) Complete(ctx context.Context, req Request) (string, error) {
	data, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm gateway status %d: %s", resp.StatusCode, snippet(body))
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("json decode error: %v body=%s", err, snippet(body))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("unexpected llm response: %s", snippet(body))
	}
	return parsed.Choices[0].Message.Content, nil
}

func snippet(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
