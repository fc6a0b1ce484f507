// Package llm provides HTTP clients for the augmentation providers.
// Exactly one provider is active at a time, selected by configuration.
package llm

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"strings"
	"time"
)

// Request is one completion call. ImagePath optionally attaches a
// screen capture for vision-capable models.
type Request struct {
	System    string
	User      string
	Model     string
	ImagePath string
}

// Completer performs chat completions.
type Completer interface {
	Name() string
	// IsConfigured reports whether the provider has credentials.
	// Unconfigured providers soft-fail: callers annotate and continue.
	IsConfigured() bool
	Complete(ctx context.Context, req Request) (string, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 120 * time.Second}
}

// encodeImage loads a capture file as base64 with its media type.
func encodeImage(path string) (data, mediaType string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	mediaType = "image/png"
	if strings.HasSuffix(strings.ToLower(path), ".jpg") || strings.HasSuffix(strings.ToLower(path), ".jpeg") {
		mediaType = "image/jpeg"
	}
	return base64.StdEncoding.EncodeToString(raw), mediaType, nil
}
