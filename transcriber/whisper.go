package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Whisper talks to a whisper-compatible transcription endpoint
// (OpenAI, Groq and local servers share the same contract).
type Whisper struct {
	client *http.Client
	apiURL string
	apiKey string
	model  string
	lang   string
}

func NewWhisper(apiURL, apiKey, model, lang string) *Whisper {
	return &Whisper{
		client: &http.Client{Timeout: 60 * time.Second},
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		lang:   lang,
	}
}

func (w *Whisper) Name() string { return "whisper" }

type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text         string  `json:"text"`
		Start        float64 `json:"start"`
		End          float64 `json:"end"`
		NoSpeechProb float64 `json:"no_speech_prob"`
		AvgLogProb   float64 `json:"avg_logprob"`
	} `json:"segments"`
}

func (w *Whisper) Transcribe(ctx context.Context, path string) (Result, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read artifact: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return Result{}, err
	}
	if _, err := part.Write(audio); err != nil {
		return Result{}, err
	}

	writer.WriteField("model", w.model)
	writer.WriteField("response_format", "verbose_json")
	if w.lang != "" {
		writer.WriteField("language", w.lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", w.apiURL, &body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("transcription API error %d: %s", resp.StatusCode, string(respBody))
	}

	var wr whisperResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return Result{}, fmt.Errorf("transcription response parse error: %w", err)
	}

	res := Result{
		Text:     wr.Text,
		Language: wr.Language,
		Duration: wr.Duration,
	}
	for _, seg := range wr.Segments {
		res.Segments = append(res.Segments, Segment{
			Text:         seg.Text,
			Start:        seg.Start,
			End:          seg.End,
			NoSpeechProb: seg.NoSpeechProb,
			AvgLogProb:   seg.AvgLogProb,
		})
	}
	return res, nil
}
