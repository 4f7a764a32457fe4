package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"dikta/transcriber"
)

// stubRecorder returns canned samples, optionally blocking until released so
// tests can observe the busy window.
type stubRecorder struct {
	samples []float32
	err     error
	started chan struct{}
	release chan struct{}
}

func (r *stubRecorder) Record() ([]float32, error) {
	if r.started != nil {
		close(r.started)
	}
	if r.release != nil {
		<-r.release
	}
	return r.samples, r.err
}

type recordingSink struct {
	texts []string
}

func (s *recordingSink) Emit(text string) error {
	s.texts = append(s.texts, text)
	return nil
}

func newTestWorker(rec utteranceRecorder, svc transcriber.Transcriber, sink TextSink) (*Worker, *EventBus) {
	bus := newEventBus()
	w := newWorker(rec, svc, sink, bus, 16000)
	w.setLanguages(newLanguageSelector(languages, w.Busy, bus))
	w.modelReady.Store(true)
	return w, bus
}

func waitDone(t *testing.T, w *Worker) {
	t.Helper()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("capture cycle did not finish")
	}
}

func countEvents(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestWorkerHappyPath(t *testing.T) {
	rec := &stubRecorder{samples: make([]float32, 16000)}
	svc := transcriber.NewFake("hello world", nil)
	sink := &recordingSink{}
	w, bus := newTestWorker(rec, svc, sink)
	go w.Run()

	if !w.Submit() {
		t.Fatal("submit rejected")
	}
	waitDone(t, w)

	if len(sink.texts) != 1 || sink.texts[0] != "hello world" {
		t.Fatalf("sink got %v, want [hello world]", sink.texts)
	}
	calls := svc.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d transcribe calls, want 1", len(calls))
	}
	if calls[0].Language != "en" {
		t.Errorf("language = %q, want en", calls[0].Language)
	}
	if calls[0].Prompt != "" {
		t.Errorf("prompt = %q, want empty for English", calls[0].Prompt)
	}
	if calls[0].WAVBytes <= 44 {
		t.Errorf("wav payload suspiciously small: %d bytes", calls[0].WAVBytes)
	}
	if w.Utterances() != 1 {
		t.Errorf("utterance count = %d, want 1", w.Utterances())
	}

	events := bus.Drain()
	if countEvents(events, EventListeningStarted) != 1 {
		t.Error("expected exactly one listening-started event")
	}
	if countEvents(events, EventListeningStopped) != 1 {
		t.Error("expected exactly one listening-stopped event")
	}
}

func TestWorkerRejectsWhileBusy(t *testing.T) {
	rec := &stubRecorder{
		samples: make([]float32, 16000),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := transcriber.NewFake("text", nil)
	w, bus := newTestWorker(rec, svc, &recordingSink{})
	go w.Run()

	if !w.Submit() {
		t.Fatal("first submit rejected")
	}
	<-rec.started
	if w.Submit() {
		t.Error("second submit accepted while capture running")
	}
	close(rec.release)
	waitDone(t, w)

	if got := countEvents(bus.Drain(), EventListeningStarted); got != 1 {
		t.Errorf("got %d listening-started events, want 1", got)
	}
	if len(svc.Calls()) != 1 {
		t.Errorf("got %d transcriptions, want 1", len(svc.Calls()))
	}
}

func TestWorkerEmptyTranscriptionSkipsSink(t *testing.T) {
	rec := &stubRecorder{samples: make([]float32, 16000)}
	svc := transcriber.NewFake("", nil)
	sink := &recordingSink{}
	w, bus := newTestWorker(rec, svc, sink)
	go w.Run()

	w.Submit()
	waitDone(t, w)

	if len(sink.texts) != 0 {
		t.Errorf("sink received %v for empty transcription", sink.texts)
	}
	if w.Utterances() != 0 {
		t.Errorf("utterance count = %d, want 0", w.Utterances())
	}
	events := bus.Drain()
	if countEvents(events, EventListeningStopped) != 1 {
		t.Error("listening-stopped not posted")
	}
}

func TestWorkerNoSpeechDiscardsQuietly(t *testing.T) {
	rec := &stubRecorder{err: ErrNoSpeech}
	svc := transcriber.NewFake("should not be called", nil)
	sink := &recordingSink{}
	w, _ := newTestWorker(rec, svc, sink)
	go w.Run()

	w.Submit()
	waitDone(t, w)

	if len(svc.Calls()) != 0 {
		t.Error("transcriber called despite no speech")
	}
	if len(sink.texts) != 0 {
		t.Error("sink called despite no speech")
	}
	if w.Busy() {
		t.Error("worker stuck busy after no-speech capture")
	}
}

func TestWorkerDeviceErrorRecovers(t *testing.T) {
	rec := &stubRecorder{err: &DeviceError{Err: errors.New("stream died")}}
	w, bus := newTestWorker(rec, transcriber.NewFake("x", nil), &recordingSink{})
	go w.Run()

	w.Submit()
	waitDone(t, w)

	if countEvents(bus.Drain(), EventListeningStopped) != 1 {
		t.Error("listening-stopped not posted after device error")
	}
	// Next submission must work again.
	rec.err = nil
	rec.samples = make([]float32, 16000)
	if !w.Submit() {
		t.Error("submit rejected after recovered device error")
	}
	waitDone(t, w)
}

func TestWorkerTranscriptionErrorSkipsSink(t *testing.T) {
	rec := &stubRecorder{samples: make([]float32, 16000)}
	svc := transcriber.NewFake("", errors.New("backend down"))
	sink := &recordingSink{}
	w, _ := newTestWorker(rec, svc, sink)
	go w.Run()

	w.Submit()
	waitDone(t, w)

	if len(sink.texts) != 0 {
		t.Error("sink called despite transcription failure")
	}
}

func TestWorkerArabicPrompt(t *testing.T) {
	rec := &stubRecorder{samples: make([]float32, 16000)}
	svc := transcriber.NewFake("نص", nil)
	w, _ := newTestWorker(rec, svc, &recordingSink{})
	if !w.langs.Select("ar") {
		t.Fatal("arabic not selectable")
	}
	go w.Run()

	w.Submit()
	waitDone(t, w)

	calls := svc.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].Language != "ar" {
		t.Errorf("language = %q, want ar", calls[0].Language)
	}
	if calls[0].Prompt != arabicPrompt {
		t.Errorf("prompt = %q, want dialect hint", calls[0].Prompt)
	}
}

func TestPasteSinkRestoresClipboard(t *testing.T) {
	var inserted string
	restored := make(chan string, 1)
	sink := pasteSink{
		read:    func() (string, error) { return "previous contents", nil },
		insert:  func(s string) error { inserted = s; return nil },
		restore: func(s string) error { restored <- s; return nil },
	}

	if err := sink.Emit("hello"); err != nil {
		t.Fatal(err)
	}
	if inserted != "hello " {
		t.Errorf("inserted %q, want trailing space appended", inserted)
	}
	select {
	case got := <-restored:
		if got != "previous contents" {
			t.Errorf("restored %q, want previous contents", got)
		}
	case <-time.After(time.Second):
		t.Fatal("clipboard never restored")
	}
}

func TestPasteSinkSkipsRestoreWhenEmpty(t *testing.T) {
	restored := make(chan string, 1)
	sink := pasteSink{
		read:    func() (string, error) { return "", nil },
		insert:  func(string) error { return nil },
		restore: func(s string) error { restored <- s; return nil },
	}

	if err := sink.Emit("hello"); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-restored:
		t.Errorf("restored %q for an empty previous clipboard", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWorkerRejectsBeforeModelReady(t *testing.T) {
	w, _ := newTestWorker(&stubRecorder{}, transcriber.NewFake("x", nil), &recordingSink{})
	w.modelReady.Store(false)

	if w.Submit() {
		t.Error("submit accepted before model loaded")
	}
}

func TestWorkerLoadModel(t *testing.T) {
	svc := transcriber.NewFake("x", nil)
	w, bus := newTestWorker(&stubRecorder{}, svc, &recordingSink{})
	w.modelReady.Store(false)

	w.LoadModel(context.Background())
	events := bus.Drain()
	if countEvents(events, EventModelLoading) != 1 || countEvents(events, EventModelReady) != 1 {
		t.Errorf("got events %v, want loading then ready", events)
	}
	if !w.Submit() {
		t.Error("submit rejected after successful load")
	}
}

func TestWorkerLoadModelFailure(t *testing.T) {
	svc := &transcriber.FakeTranscriber{WarmErr: errors.New("no api key")}
	w, bus := newTestWorker(&stubRecorder{}, svc, &recordingSink{})
	w.modelReady.Store(false)

	w.LoadModel(context.Background())
	events := bus.Drain()
	if countEvents(events, EventModelLoadFailed) != 1 {
		t.Errorf("got events %v, want model-load-failed", events)
	}
	for _, ev := range events {
		if ev.Kind == EventModelLoadFailed && ev.Reason == "" {
			t.Error("failure event carries no reason")
		}
	}
	if w.Submit() {
		t.Error("submit accepted after failed load")
	}
}
