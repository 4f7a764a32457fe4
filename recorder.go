package main

import (
	"errors"
	"fmt"

	"dikta/audio"
	"dikta/log"
)

// ErrNoSpeech is returned by Record when the initial timeout expired without
// any frame crossing the silence threshold. The buffered audio is discarded.
var ErrNoSpeech = errors.New("no speech detected")

// DeviceError wraps a failure of the microphone or its frame stream. The
// capture is abandoned when one occurs.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device: %v", e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// frameSource is the pull side of a running capture. Satisfied by
// audio.FrameSource and by scripted sources in tests.
type frameSource interface {
	ReadFrame() (audio.Frame, error)
	Overflows() uint64
	Close()
}

// Recorder captures one utterance per Record call. The device is acquired
// through open when the call starts and released before it returns, so the
// microphone is only held while a capture is actually running.
type Recorder struct {
	open func() (frameSource, error)
	gate GateConfig
}

func newRecorder(open func() (frameSource, error), gate GateConfig) *Recorder {
	return &Recorder{open: open, gate: gate}
}

// Record reads frames until the silence gate ends the capture and returns the
// accumulated samples. A nil sample slice with ErrNoSpeech means nothing was
// said; a DeviceError means the stream broke mid-capture.
func (r *Recorder) Record() ([]float32, error) {
	src, err := r.open()
	if err != nil {
		return nil, &DeviceError{Err: err}
	}
	defer src.Close()

	var (
		buf      []float32
		state    GateState
		dropped  uint64
		decision GateDecision
	)
	for {
		frame, err := src.ReadFrame()
		if err != nil {
			return nil, &DeviceError{Err: err}
		}
		buf = append(buf, frame...)

		if n := src.Overflows(); n > dropped {
			log.Warnf("audio queue overflow, %d chunk(s) dropped", n-dropped)
			dropped = n
		}

		decision, state = r.gate.Evaluate(frame, state)
		if decision == GateContinue {
			continue
		}
		if decision == GateNoSpeechTimeout {
			log.Infof("no speech within %s, discarding capture", r.gate.InitialTimeout)
			return nil, ErrNoSpeech
		}
		break
	}

	if decision == GateMaxDuration {
		log.Infof("max recording duration %s reached", r.gate.MaxRecordDuration)
	}
	log.Infof("captured %s of audio", state.Accumulated)
	return buf, nil
}
