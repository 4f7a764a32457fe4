package transcriber

import (
	"context"
	"sync"
)

// FakeTranscriber records calls and returns canned results for tests.
type FakeTranscriber struct {
	Text    string
	Err     error
	WarmErr error

	mu    sync.Mutex
	calls []FakeCall
}

type FakeCall struct {
	WAVBytes int
	Language string
	Prompt   string
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{Text: text, Err: err}
}

func (f *FakeTranscriber) Name() string { return "fake" }

func (f *FakeTranscriber) Warm(context.Context) error { return f.WarmErr }

func (f *FakeTranscriber) Transcribe(_ context.Context, wav []byte, language, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{WAVBytes: len(wav), Language: language, Prompt: prompt})
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

func (f *FakeTranscriber) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}
