package main

import (
	"time"

	"dikta/audio"
	"dikta/encoder"
)

// Config holds the capture and silence-detection parameters. Everything is
// fixed at process start; there is no runtime reconfiguration.
type Config struct {
	SampleRate        int
	Channels          int
	FrameDuration     time.Duration
	SilenceThreshold  float64 // RMS energy below this level is silence
	SilenceTimeout    time.Duration
	MaxRecordDuration time.Duration
	InitialTimeout    time.Duration
}

func defaultConfig() Config {
	return Config{
		SampleRate:        encoder.SampleRate,
		Channels:          encoder.Channels,
		FrameDuration:     500 * time.Millisecond,
		SilenceThreshold:  0.003,
		SilenceTimeout:    3500 * time.Millisecond,
		MaxRecordDuration: 120 * time.Second,
		InitialTimeout:    15 * time.Second,
	}
}

func (c Config) gate() GateConfig {
	return GateConfig{
		SilenceThreshold:  c.SilenceThreshold,
		SilenceTimeout:    c.SilenceTimeout,
		MaxRecordDuration: c.MaxRecordDuration,
		InitialTimeout:    c.InitialTimeout,
		FrameDuration:     c.FrameDuration,
	}
}

func (c Config) frames() audio.FrameConfig {
	return audio.FrameConfig{
		SampleRate:    c.SampleRate,
		FrameDuration: c.FrameDuration,
		ReadTimeout:   2 * c.FrameDuration,
	}
}
