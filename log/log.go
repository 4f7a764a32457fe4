// Package log is a thin zerolog wrapper writing diagnostics to a per-user
// log directory. Until Init succeeds everything goes to stderr only.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcribeFile *os.File
	logMu          sync.Mutex
	fileReady      bool
	pid            int
	dir            string
)

func init() {
	pid = os.Getpid()
	diagLog = newLogger(os.Stderr)
}

func newLogger(w io.Writer) zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	return zerolog.New(console).With().Timestamp().Int("pid", pid).Logger()
}

func ResolveDir(flagPath string) (string, error) {
	abs := func(p string) (string, error) {
		if filepath.IsAbs(p) {
			return p, nil
		}
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(wd, p), nil
	}

	if flagPath != "" {
		return abs(flagPath)
	}
	if envPath := os.Getenv("DIKTA_LOG_PATH"); envPath != "" {
		return abs(envPath)
	}
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// Init switches diagnostics to a file in the configured directory and opens
// the transcript log. Safe to skip; logging then stays on stderr.
func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcribePath := filepath.Join(dir, "transcribe_log.txt")
	transcribeFile, err = os.OpenFile(transcribePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	diagLog = newLogger(io.MultiWriter(os.Stderr, diagFile))
	fileReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcribeFile != nil {
		transcribeFile.Close()
		transcribeFile = nil
	}
	diagLog = newLogger(os.Stderr)
	fileReady = false
}

func Info(msg string) {
	diagLog.Info().Msg(msg)
}

func Infof(format string, args ...any) {
	diagLog.Info().Msg(fmt.Sprintf(format, args...))
}

func Warn(msg string) {
	diagLog.Warn().Msg(msg)
}

func Warnf(format string, args ...any) {
	diagLog.Warn().Msg(fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	diagLog.Error().Msg(fmt.Sprintf(format, args...))
}

// TranscriptionText appends final transcribed text to the transcript log.
func TranscriptionText(text string) {
	logMu.Lock()
	defer logMu.Unlock()
	if !fileReady {
		return
	}
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	transcribeFile.WriteString(line)
}

func SessionStart(provider, language string) {
	diagLog.Info().
		Str("provider", provider).
		Str("language", language).
		Msg("session_start")
}

func SessionEnd(utterances int) {
	diagLog.Info().
		Int("utterances", utterances).
		Msg("session_end")
}
