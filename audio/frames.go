package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Frame is one fixed-duration slice of mono float samples in [-1, 1).
type Frame []float32

// ErrReadTimeout is returned when the device stops delivering data for
// longer than the configured read timeout.
var ErrReadTimeout = errors.New("audio: frame read timed out")

type FrameConfig struct {
	SampleRate    int
	FrameDuration time.Duration
	ReadTimeout   time.Duration // max wait for one frame; 0 means 2s
	QueueSize     int           // buffered device chunks; 0 means 32
}

// FrameSource adapts a callback-driven CaptureDevice into a pull-based
// source of fixed-size frames. The device thread never blocks: when the
// internal queue is full the chunk is dropped and counted as an overflow.
type FrameSource struct {
	capture     CaptureDevice
	frameLen    int
	readTimeout time.Duration
	chunks      chan []float32
	pending     []float32
	overflows   atomic.Uint64
}

// NewFrameSource installs the capture callback and starts the device. The
// caller owns the source and must Close it to release the device.
func NewFrameSource(capture CaptureDevice, cfg FrameConfig) (*FrameSource, error) {
	frameLen := int(int64(cfg.SampleRate) * int64(cfg.FrameDuration) / int64(time.Second))
	if frameLen <= 0 {
		return nil, fmt.Errorf("audio: invalid frame size (%d samples)", frameLen)
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 2 * time.Second
	}
	queueSize := cfg.QueueSize
	if queueSize == 0 {
		queueSize = 32
	}

	s := &FrameSource{
		capture:     capture,
		frameLen:    frameLen,
		readTimeout: readTimeout,
		chunks:      make(chan []float32, queueSize),
	}

	capture.SetCallback(func(data []byte, _ uint32) {
		if len(data) < 2 {
			return
		}
		chunk := make([]float32, len(data)/2)
		for i := range chunk {
			chunk[i] = float32(int16(binary.LittleEndian.Uint16(data[i*2:]))) / 32768.0
		}
		select {
		case s.chunks <- chunk:
		default:
			s.overflows.Add(1)
		}
	})

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		return nil, fmt.Errorf("audio: start capture: %w", err)
	}
	return s, nil
}

// ReadFrame blocks until one full frame has been captured or the read
// timeout elapses.
func (s *FrameSource) ReadFrame() (Frame, error) {
	frame := make([]float32, 0, s.frameLen)
	if len(s.pending) > 0 {
		n := min(len(s.pending), s.frameLen)
		frame = append(frame, s.pending[:n]...)
		s.pending = s.pending[n:]
	}

	timer := time.NewTimer(s.readTimeout)
	defer timer.Stop()

	for len(frame) < s.frameLen {
		select {
		case chunk := <-s.chunks:
			need := s.frameLen - len(frame)
			if len(chunk) > need {
				frame = append(frame, chunk[:need]...)
				s.pending = append(s.pending, chunk[need:]...)
			} else {
				frame = append(frame, chunk...)
			}
		case <-timer.C:
			return nil, ErrReadTimeout
		}
	}
	return frame, nil
}

// Overflows returns the number of device chunks dropped so far.
func (s *FrameSource) Overflows() uint64 {
	return s.overflows.Load()
}

// Close stops the device and detaches the callback. Always called exactly
// once per acquisition, on every exit path of a recording.
func (s *FrameSource) Close() {
	s.capture.Stop()
	s.capture.ClearCallback()
}
