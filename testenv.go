package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dikta/audio"
	"dikta/encoder"
	"dikta/log"
	"dikta/transcriber"
)

// runTestMode drives the full pipeline headlessly from stdin, replaying a WAV
// file instead of a live microphone. Commands, one per line:
//
//	LISTEN     start a capture (same as the dictation hotkey)
//	SWITCH     cycle the language
//	WAIT       block until the current capture cycle finishes
//	SLEEP <ms> pause the driver
//	QUIT       exit
//
// Events that reach the presentation queue are echoed to stdout as
// "EVENT <kind>" lines so integration scripts can assert on them. Set
// DIKTA_FAKE_TEXT to bypass the real transcription backend.
func runTestMode(wavPath string, cfg Config, langCode string) {
	defer log.Close()

	var svc transcriber.Transcriber
	if text := os.Getenv("DIKTA_FAKE_TEXT"); text != "" {
		svc = transcriber.NewFake(text, nil)
	} else {
		var err error
		svc, err = transcriber.New()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	log.SessionStart(svc.Name(), langCode)

	fakeCtx, err := audio.NewFakeContextFromWAV(wavPath, cfg.SampleRate, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}
	capture, err := fakeCtx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: uint32(cfg.SampleRate), Channels: encoder.Channels,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating capture: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()

	bus := newEventBus()
	rec := newRecorder(func() (frameSource, error) {
		return audio.NewFrameSource(capture, cfg.frames())
	}, cfg.gate())

	worker := newWorker(rec, svc, stdoutSink{}, bus, cfg.SampleRate)
	theWorker = worker
	selector := newLanguageSelector(languages, worker.Busy, bus)
	if !selector.Select(langCode) {
		fmt.Fprintf(os.Stderr, "Error: unknown language %q\n", langCode)
		os.Exit(1)
	}
	worker.setLanguages(selector)

	go worker.Run()
	worker.LoadModel(context.Background())

	// Echo events so the driving script can assert on them.
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			for _, ev := range bus.Drain() {
				fmt.Printf("EVENT %s\n", ev.Kind)
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch cmd {
		case "LISTEN":
			worker.Submit()
		case "SWITCH":
			selector.Switch()
		case "WAIT":
			<-worker.Done()
		case "QUIT":
			log.SessionEnd(worker.Utterances())
			os.Exit(0)
		default:
			if strings.HasPrefix(cmd, "SLEEP ") {
				if ms, err := strconv.Atoi(cmd[6:]); err == nil {
					time.Sleep(time.Duration(ms) * time.Millisecond)
				}
			}
		}
	}
}

// stdoutSink prints transcriptions instead of pasting them, keeping test runs
// from touching the real clipboard.
type stdoutSink struct{}

func (stdoutSink) Emit(text string) error {
	fmt.Printf("TEXT %s\n", text)
	return nil
}
