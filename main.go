package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"dikta/audio"
	"dikta/encoder"
	"dikta/hotkey"
	"dikta/log"
	"dikta/shutdown"
	"dikta/transcriber"
	"dikta/tray"

	tea "github.com/charmbracelet/bubbletea"
)

var version = "dev"

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	shutdownOnce sync.Once
	theWorker    *Worker
)

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if theWorker != nil {
			if n := theWorker.Utterances(); n > 0 {
				log.SessionEnd(n)
			}
		}
		log.Close()
		tray.Quit()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

// presentTray mirrors pipeline events onto the system tray. Called from
// whichever goroutine is consuming the event queue.
func presentTray(ev Event) {
	switch ev.Kind {
	case EventListeningStarted:
		tray.SetRecording(true)
	case EventListeningStopped:
		tray.SetRecording(false)
	}
}

// headlessEventLoop consumes the event queue when no TUI is running, so
// posts never pile up and the tray still tracks state.
func headlessEventLoop(bus *EventBus) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		for _, ev := range bus.Drain() {
			presentTray(ev)
		}
	}
}

func run() {
	thresholdFlag := flag.Float64("threshold", 0.003, "RMS energy below this counts as silence")
	silenceFlag := flag.Duration("silence", 3500*time.Millisecond, "Trailing silence that ends an utterance")
	maxDurFlag := flag.Duration("maxdur", 120*time.Second, "Hard cap on a single recording")
	initialFlag := flag.Duration("initial", 15*time.Second, "Give-up timeout when no speech arrives")
	frameDurFlag := flag.Duration("framedur", 500*time.Millisecond, "Analysis frame length")
	langFlag := flag.String("lang", "en", "Startup language code (en, ar)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device interactively")
	logPathFlag := flag.String("logpath", "", "Log directory (default: OS-specific location, ./ for current dir)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven); requires a WAV file argument")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("dikta %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	cfg := defaultConfig()
	cfg.SilenceThreshold = *thresholdFlag
	cfg.SilenceTimeout = *silenceFlag
	cfg.MaxRecordDuration = *maxDurFlag
	cfg.InitialTimeout = *initialFlag
	cfg.FrameDuration = *frameDurFlag

	if *testFlag {
		args := flag.Args()
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: dikta -test <wav-file>")
			os.Exit(1)
		}
		runTestMode(args[0], cfg, *langFlag)
		return
	}

	svc, err := transcriber.New()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	log.SessionStart(svc.Name(), *langFlag)

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := ctx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			fmt.Printf("Warning: device %q not found, using default\n", *deviceFlag)
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(ctx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v, using default\n", err)
			selectedDevice = nil
		}
	}
	if selectedDevice != nil && audio.IsBluetooth(selectedDevice.Name) {
		log.Warnf("bluetooth microphone %q selected, expect degraded quality", selectedDevice.Name)
	}

	capture, err := ctx.NewCapture(selectedDevice, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Printf("Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()
	log.Infof("microphone: %s", capture.DeviceName())

	bus := newEventBus()
	rec := newRecorder(func() (frameSource, error) {
		return audio.NewFrameSource(capture, cfg.frames())
	}, cfg.gate())

	worker := newWorker(rec, svc, newPasteSink(), bus, cfg.SampleRate)
	theWorker = worker
	selector := newLanguageSelector(languages, worker.Busy, bus)
	if !selector.Select(*langFlag) {
		fmt.Printf("Error: unknown language %q\n", *langFlag)
		os.Exit(1)
	}
	worker.setLanguages(selector)

	go worker.Run()
	go worker.LoadModel(context.Background())

	trayQuit := tray.Init()
	tray.SetLanguage(selector.Current().Name)

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)

	if *tuiFlag {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram(bus, selector.Current())
		tuiMu.Unlock()
		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()
	} else {
		go headlessEventLoop(bus)
	}

	listenHK := hotkey.New(hotkey.BindListen)
	if err := listenHK.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering dictation hotkey: %v\n", err)
		os.Exit(1)
	}
	defer listenHK.Unregister()

	langHK := hotkey.New(hotkey.BindSwitchLanguage)
	if err := langHK.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering language hotkey: %v\n", err)
		os.Exit(1)
	}
	defer langHK.Unregister()

	for {
		select {
		case <-listenHK.Presses():
			log.Info("hotkey_listen")
			worker.Submit()

		case <-langHK.Presses():
			log.Info("hotkey_language")
			if selector.Switch() {
				tray.SetLanguage(selector.Current().Name)
			}

		case <-sigChan:
			gracefulShutdown()

		case <-trayQuit:
			gracefulShutdown()
		}
	}
}

func main() {
	run()
}
