package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TextGenerator produces a completion for a system+user prompt pair.
type TextGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ChatClient talks to an OpenAI-compatible chat completion gateway.
type ChatClient struct {
	url        string
	key        string
	model      string
	httpClient *http.Client
}

func NewChatClient(url, key, model string) *ChatClient {
	return &ChatClient{
		url:        url,
		key:        key,
		model:      model,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionResponse covers the field layouts seen across gateway
// providers. Extraction tries each known location in a fixed order
// rather than guessing at runtime.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
	Response string `json:"response"`
	Output   string `json:"output"`
	Text     string `json:"text"`
	Content  string `json:"content"`
}

var contentExtractors = []func(*completionResponse) string{
	func(r *completionResponse) string {
		if len(r.Choices) > 0 {
			return r.Choices[0].Message.Content
		}
		return ""
	},
	func(r *completionResponse) string {
		if len(r.Choices) > 0 {
			return r.Choices[0].Text
		}
		return ""
	},
	func(r *completionResponse) string { return r.Response },
	func(r *completionResponse) string { return r.Output },
	func(r *completionResponse) string { return r.Text },
	func(r *completionResponse) string { return r.Content },
}

func (c *ChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		"temperature": 0.2,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion: status %d: %s", resp.StatusCode, snippet(data))
	}

	var parsed completionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("completion: decode response: %w", err)
	}
	for _, extract := range contentExtractors {
		if text := extract(&parsed); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("completion: no text field in response: %s", snippet(data))
}
