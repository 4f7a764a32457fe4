package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Whisper talks to an OpenAI-compatible audio transcription endpoint.
// The same client serves both a local faster-whisper server and Groq.
type Whisper struct {
	name    string
	apiURL  string
	warmURL string
	model   string
	apiKey  string
	client  *http.Client
}

func NewWhisperServer(baseURL, apiKey string) *Whisper {
	base := strings.TrimRight(baseURL, "/")
	return &Whisper{
		name:    "whisper-server",
		apiURL:  base + "/v1/audio/transcriptions",
		warmURL: base + "/health",
		model:   "whisper-1",
		apiKey:  apiKey,
		client:  newHTTPClient(),
	}
}

func NewGroq(apiKey string) *Whisper {
	return &Whisper{
		name:    "groq",
		apiURL:  "https://api.groq.com/openai/v1/audio/transcriptions",
		warmURL: "https://api.groq.com/openai/v1/models",
		model:   "whisper-large-v3-turbo",
		apiKey:  apiKey,
		client:  newHTTPClient(),
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        4,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

func (w *Whisper) Name() string { return w.name }

// Warm checks the endpoint once at startup. For the local server this is
// the health probe that blocks until the model is loaded; for Groq it
// validates the key and pre-establishes the TLS connection.
func (w *Whisper) Warm(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.warmURL, nil)
	if err != nil {
		return err
	}
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s not reachable: %w", w.name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s readiness check failed: HTTP %d", w.name, resp.StatusCode)
	}
	return nil
}

type whisperResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Text string `json:"text"`
	} `json:"segments"`
}

func (w *Whisper) Transcribe(ctx context.Context, wav []byte, language, prompt string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(wav); err != nil {
		return "", err
	}

	writer.WriteField("model", w.model)
	writer.WriteField("response_format", "verbose_json")
	if language != "" {
		writer.WriteField("language", language)
	}
	if prompt != "" {
		writer.WriteField("prompt", prompt)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.apiURL, &body)
	if err != nil {
		return "", err
	}
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s API error %d: %s", w.name, resp.StatusCode, string(respBody))
	}

	var wr whisperResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return "", fmt.Errorf("%s response parse error: %w", w.name, err)
	}
	return joinSegments(wr), nil
}

// joinSegments concatenates segment texts with single spaces; the flat text
// field is the fallback when the server omits segments.
func joinSegments(wr whisperResponse) string {
	if len(wr.Segments) == 0 {
		return strings.TrimSpace(wr.Text)
	}
	parts := make([]string, 0, len(wr.Segments))
	for _, seg := range wr.Segments {
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
