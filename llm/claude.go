package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultClaudeBaseURL = "https://api.anthropic.com/v1/messages"

// Claude implements Completer for the Anthropic messages API.
type Claude struct {
	http   *http.Client
	apiKey string
}

func NewClaude(apiKey string) *Claude {
	return &Claude{http: newHTTPClient(), apiKey: apiKey}
}

func (c *Claude) Name() string       { return "claude" }
func (c *Claude) IsConfigured() bool { return c.apiKey != "" }

type claudeRequest struct {
	Model     string          `json:"model"`
	Messages  []claudeMessage `json:"messages"`
	System    string          `json:"system,omitempty"`
	MaxTokens int             `json:"max_tokens"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type claudeContentBlock struct {
	Type   string        `json:"type"`
	Text   string        `json:"text,omitempty"`
	Source *claudeSource `json:"source,omitempty"`
}

type claudeSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Claude) Complete(ctx context.Context, r Request) (string, error) {
	var content any = r.User
	if r.ImagePath != "" {
		data, mediaType, err := encodeImage(r.ImagePath)
		if err != nil {
			return "", fmt.Errorf("encode image: %w", err)
		}
		content = []claudeContentBlock{
			{Type: "image", Source: &claudeSource{Type: "base64", MediaType: mediaType, Data: data}},
			{Type: "text", Text: r.User},
		}
	}

	reqBody := claudeRequest{
		Model:     r.Model,
		Messages:  []claudeMessage{{Role: "user", Content: content}},
		System:    r.System,
		MaxTokens: 1024, // Claude requires max_tokens
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", defaultClaudeBaseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("content-type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var claudeResp claudeResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if claudeResp.Error != nil {
		return "", fmt.Errorf("api error: %s - %s", claudeResp.Error.Type, claudeResp.Error.Message)
	}
	for _, block := range claudeResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}
