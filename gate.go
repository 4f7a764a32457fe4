package main

import (
	"math"
	"time"

	"dikta/audio"
)

// GateDecision tells the recorder what to do after the gate has seen a frame.
type GateDecision int

const (
	// GateContinue keeps the capture going.
	GateContinue GateDecision = iota
	// GateUtteranceComplete ends the capture with speech in the buffer.
	GateUtteranceComplete
	// GateNoSpeechTimeout ends the capture without any speech having occurred.
	GateNoSpeechTimeout
	// GateMaxDuration ends the capture because the hard length cap was hit.
	GateMaxDuration
)

func (d GateDecision) String() string {
	switch d {
	case GateContinue:
		return "continue"
	case GateUtteranceComplete:
		return "utterance_complete"
	case GateNoSpeechTimeout:
		return "no_speech_timeout"
	case GateMaxDuration:
		return "max_duration"
	}
	return "unknown"
}

// GateConfig parameterizes the silence gate. FrameDuration is the nominal
// length of each frame fed to Evaluate; all time accounting is done in
// frame-sized steps rather than wall-clock time.
type GateConfig struct {
	SilenceThreshold  float64
	SilenceTimeout    time.Duration
	MaxRecordDuration time.Duration
	InitialTimeout    time.Duration
	FrameDuration     time.Duration
}

// GateState is the gate's accumulated view of a capture in progress. The zero
// value is the correct starting state for a fresh capture.
type GateState struct {
	Accumulated    time.Duration
	SilenceRun     time.Duration
	SpeechDetected bool
}

// Evaluate folds one frame into the state and decides whether the capture
// should continue. Decision precedence when several conditions hold at once:
// no-speech timeout, then utterance completion, then the max duration cap.
func (c GateConfig) Evaluate(frame audio.Frame, s GateState) (GateDecision, GateState) {
	s.Accumulated += c.FrameDuration
	if rmsEnergy(frame) >= c.SilenceThreshold {
		s.SpeechDetected = true
		s.SilenceRun = 0
	} else {
		s.SilenceRun += c.FrameDuration
	}

	switch {
	case !s.SpeechDetected && s.Accumulated >= c.InitialTimeout:
		return GateNoSpeechTimeout, s
	case s.SpeechDetected && s.SilenceRun >= c.SilenceTimeout:
		return GateUtteranceComplete, s
	case s.Accumulated >= c.MaxRecordDuration:
		return GateMaxDuration, s
	}
	return GateContinue, s
}

// rmsEnergy returns the root-mean-square amplitude of a frame. An empty frame
// reads as perfect silence.
func rmsEnergy(frame audio.Frame) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, sample := range frame {
		sum += float64(sample) * float64(sample)
	}
	return math.Sqrt(sum / float64(len(frame)))
}
