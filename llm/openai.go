package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements Completer for OpenAI and compatible APIs.
type OpenAI struct {
	http    *http.Client
	apiKey  string
	baseURL string
}

func NewOpenAI(apiKey, baseURL string) *OpenAI {
	return &OpenAI{http: newHTTPClient(), apiKey: apiKey, baseURL: baseURL}
}

func (c *OpenAI) Name() string       { return "openai" }
func (c *OpenAI) IsConfigured() bool { return c.apiKey != "" }

type openaiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openaiContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

type openaiRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAI) Complete(ctx context.Context, r Request) (string, error) {
	var messages []openaiMessage
	if r.System != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: r.System})
	}

	if r.ImagePath != "" {
		data, mediaType, err := encodeImage(r.ImagePath)
		if err != nil {
			return "", fmt.Errorf("encode image: %w", err)
		}
		messages = append(messages, openaiMessage{
			Role: "user",
			Content: []openaiContentPart{
				{Type: "text", Text: r.User},
				{Type: "image_url", ImageURL: &openaiImageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", mediaType, data),
				}},
			},
		})
	} else {
		messages = append(messages, openaiMessage{Role: "user", Content: r.User})
	}

	jsonBody, err := json.Marshal(openaiRequest{Model: r.Model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := defaultOpenAIBaseURL
	if c.baseURL != "" {
		url = c.baseURL
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error: %d - %s", resp.StatusCode, string(body))
	}

	var chatResp openaiResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}
