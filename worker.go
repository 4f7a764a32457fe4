package main

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"dikta/clipboard"
	"dikta/encoder"
	"dikta/log"
	"dikta/transcriber"
)

const transcribeTimeout = 60 * time.Second

// TextSink receives the final transcription text.
type TextSink interface {
	Emit(text string) error
}

const clipboardRestoreDelay = 600 * time.Millisecond

// pasteSink delivers text into the focused application via the clipboard.
// A trailing space is appended so consecutive utterances don't run together,
// and whatever the clipboard held before is put back shortly after the
// paste keystroke has landed.
type pasteSink struct {
	read    func() (string, error)
	insert  func(string) error
	restore func(string) error
	delay   time.Duration
}

func newPasteSink() pasteSink {
	return pasteSink{
		read:    clipboard.Read,
		insert:  clipboard.Insert,
		restore: clipboard.Copy,
		delay:   clipboardRestoreDelay,
	}
}

func (p pasteSink) Emit(text string) error {
	prev, _ := p.read()
	if err := p.insert(text + " "); err != nil {
		return err
	}
	if prev != "" {
		go func() {
			time.Sleep(p.delay)
			if err := p.restore(prev); err != nil {
				log.Warnf("restoring clipboard: %v", err)
			}
		}()
	}
	return nil
}

// utteranceRecorder captures one utterance worth of samples.
type utteranceRecorder interface {
	Record() ([]float32, error)
}

// Worker runs the capture-transcribe-paste pipeline. Exactly one capture can
// be in flight: Submit rejects while a previous one is still running rather
// than queueing, so a stray hotkey press never stacks up recordings.
type Worker struct {
	rec   utteranceRecorder
	svc   transcriber.Transcriber
	out   TextSink
	bus   *EventBus
	langs *languageSelector

	sampleRate int

	commands   chan struct{}
	done       chan struct{}
	busy       atomic.Bool
	modelReady atomic.Bool
	modelFail  atomic.Bool
	utterances atomic.Int64
}

func newWorker(rec utteranceRecorder, svc transcriber.Transcriber, out TextSink, bus *EventBus, sampleRate int) *Worker {
	return &Worker{
		rec:        rec,
		svc:        svc,
		out:        out,
		bus:        bus,
		sampleRate: sampleRate,
		commands:   make(chan struct{}, 1),
		done:       make(chan struct{}, 1),
	}
}

func (w *Worker) setLanguages(langs *languageSelector) {
	w.langs = langs
}

// Busy reports whether a capture or its transcription is in flight.
func (w *Worker) Busy() bool {
	return w.busy.Load()
}

// Utterances returns how many transcriptions produced text this session.
func (w *Worker) Utterances() int {
	return int(w.utterances.Load())
}

// Done signals after each finished capture cycle. Used by the headless test
// driver to wait for completion.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Submit requests a capture. Returns false when the model isn't ready or a
// capture is already running; nothing is ever queued for later.
func (w *Worker) Submit() bool {
	if w.modelFail.Load() {
		log.Warn("transcription model failed to load, capture unavailable")
		return false
	}
	if !w.modelReady.Load() {
		log.Info("model still loading, try again shortly")
		return false
	}
	if !w.busy.CompareAndSwap(false, true) {
		log.Info("capture already in progress, press ignored")
		return false
	}
	// The busy flag guarantees room in the channel.
	w.commands <- struct{}{}
	return true
}

// Run processes capture requests until the commands channel is abandoned.
// Call it on its own goroutine.
func (w *Worker) Run() {
	for range w.commands {
		w.handleListen()
		w.busy.Store(false)
		select {
		case w.done <- struct{}{}:
		default:
		}
	}
}

// LoadModel warms the transcription backend and announces the outcome. Submit
// rejects until this has succeeded.
func (w *Worker) LoadModel(ctx context.Context) {
	w.bus.Post(Event{Kind: EventModelLoading})
	log.Infof("warming up %s", w.svc.Name())
	if err := w.svc.Warm(ctx); err != nil {
		log.Errorf("model load failed: %v", err)
		w.modelFail.Store(true)
		w.bus.Post(Event{Kind: EventModelLoadFailed, Reason: err.Error()})
		return
	}
	w.modelReady.Store(true)
	w.bus.Post(Event{Kind: EventModelReady})
	log.Info("model ready")
}

func (w *Worker) handleListen() {
	lang := w.langs.Current()
	log.Infof("listening (%s), speak now", lang.Code)
	w.bus.Post(Event{Kind: EventListeningStarted, Lang: lang.Abbr})

	samples, err := w.rec.Record()
	w.bus.Post(Event{Kind: EventListeningStopped})

	if err != nil {
		var devErr *DeviceError
		switch {
		case errors.Is(err, ErrNoSpeech):
			// Already logged by the recorder, nothing to transcribe.
		case errors.As(err, &devErr):
			log.Errorf("microphone failure: %v", err)
		default:
			log.Errorf("capture failed: %v", err)
		}
		return
	}
	if len(samples) == 0 {
		return
	}

	wav, err := encoder.EncodeWAV(samples, w.sampleRate)
	if err != nil {
		log.Errorf("wav encode failed: %v", err)
		return
	}

	log.Infof("transcribing %d bytes (%s)", len(wav), lang.Code)
	ctx, cancel := context.WithTimeout(context.Background(), transcribeTimeout)
	defer cancel()
	text, err := w.svc.Transcribe(ctx, wav, lang.Code, lang.DialectHint())
	if err != nil {
		log.Errorf("transcription failed: %v", err)
		return
	}
	if text == "" {
		log.Info("no text recognized")
		return
	}

	log.TranscriptionText(text)
	w.utterances.Add(1)
	if err := w.out.Emit(text); err != nil {
		log.Errorf("delivering text: %v", err)
	}
}
