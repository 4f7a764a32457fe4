// Package transcriber maps one recorded utterance (16-bit PCM WAV) plus a
// language code to text, via a Whisper-compatible HTTP endpoint.
package transcriber

import (
	"context"
	"fmt"
	"os"
)

type Transcriber interface {
	Name() string
	// Warm performs the one-time model/connection readiness check. Capture
	// requests must be rejected until it succeeds.
	Warm(ctx context.Context) error
	// Transcribe sends a complete WAV buffer and returns the recognized
	// text, segment texts joined with single spaces and trimmed. An empty
	// string with nil error means no speech was recognized.
	Transcribe(ctx context.Context, wav []byte, language, prompt string) (string, error)
}

// New picks a backend from the environment: a local Whisper server when
// DIKTA_WHISPER_URL is set, otherwise the Groq API.
func New() (Transcriber, error) {
	if url := os.Getenv("DIKTA_WHISPER_URL"); url != "" {
		return NewWhisperServer(url, os.Getenv("DIKTA_WHISPER_KEY")), nil
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return NewGroq(key), nil
	}
	return nil, fmt.Errorf("set DIKTA_WHISPER_URL or GROQ_API_KEY environment variable")
}
