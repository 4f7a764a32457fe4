// Package tray puts the service in the system tray: a microphone icon,
// the current language, and an exit item. Quitting is abrupt — the
// process does not wait for an in-flight capture.
package tray

import (
	"sync"

	"fyne.io/systray"
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	mu        sync.Mutex
	ready     bool
	language  string
	recording bool
)

// Init starts the tray loop in the background and returns the quit channel.
func Init() <-chan struct{} {
	go systray.Run(onReady, nil)
	return quitCh
}

func onReady() {
	mu.Lock()
	ready = true
	rec := recording
	mu.Unlock()

	updateIcon(rec)
	updateTooltip()

	mQuit := systray.AddMenuItem("Exit dikta", "Stop the dictation service")
	go func() {
		<-mQuit.ClickedCh
		Quit()
	}()
}

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
	systray.Quit()
}

func SetRecording(rec bool) {
	mu.Lock()
	recording = rec
	ok := ready
	mu.Unlock()
	if ok {
		updateIcon(rec)
	}
}

// SetLanguage updates the tooltip with the active language name.
func SetLanguage(name string) {
	mu.Lock()
	language = name
	ok := ready
	mu.Unlock()
	if ok {
		updateTooltip()
	}
}

func updateIcon(rec bool) {
	if rec {
		systray.SetIcon(iconRecording)
	} else {
		systray.SetIcon(iconIdle)
	}
}

func updateTooltip() {
	mu.Lock()
	lang := language
	mu.Unlock()
	tip := "dikta – speech to text"
	if lang != "" {
		tip += " (" + lang + ")"
	}
	systray.SetTooltip(tip)
}
