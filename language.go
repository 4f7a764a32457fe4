package main

import (
	"strings"
	"sync"

	"dikta/log"
)

// Language describes one transcription target. Code is the ISO 639-1 code
// sent to the transcription service, Abbr is the short label shown in the UI.
type Language struct {
	Name string
	Code string
	Abbr string
}

var languages = []Language{
	{Name: "English", Code: "en", Abbr: "EN"},
	{Name: "Arabic (Iraq)", Code: "ar", Abbr: "AR"},
}

// Whisper has no dialect parameter, so the Iraqi accent is steered through
// the transcription prompt instead.
const arabicPrompt = "this is arabic language iraqi"

// DialectHint returns the transcription prompt for the language, or "" when
// no steering is needed.
func (l Language) DialectHint() string {
	if l.Code == "ar" {
		return arabicPrompt
	}
	return ""
}

// languageSelector cycles through the configured languages. Switching is
// refused while a capture is running so a transcription never races a
// language change.
type languageSelector struct {
	mu   sync.Mutex
	list []Language
	idx  int
	busy func() bool
	bus  *EventBus
}

func newLanguageSelector(list []Language, busy func() bool, bus *EventBus) *languageSelector {
	return &languageSelector{list: list, busy: busy, bus: bus}
}

func (s *languageSelector) Current() Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list[s.idx]
}

// Switch advances to the next language and announces it. Returns false when
// the switch was refused because a capture is in progress.
func (s *languageSelector) Switch() bool {
	if s.busy != nil && s.busy() {
		log.Info("cannot switch language while recording")
		return false
	}
	s.mu.Lock()
	s.idx = (s.idx + 1) % len(s.list)
	lang := s.list[s.idx]
	s.mu.Unlock()

	log.Infof("language switched to %s", lang.Name)
	s.bus.Post(Event{Kind: EventLanguageSwitched, Lang: lang.Abbr})
	return true
}

// Select jumps straight to the language with the given code ("en", "ar").
// Returns false for an unknown code.
func (s *languageSelector) Select(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.list {
		if strings.EqualFold(l.Code, code) {
			s.idx = i
			return true
		}
	}
	return false
}
