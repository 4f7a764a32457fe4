package audio

import (
	"errors"
	"math"
	"testing"
	"time"
)

func sine(freq float64, durationMs, sampleRate int, amp float32) []float32 {
	n := sampleRate * durationMs / 1000
	out := make([]float32, n)
	for i := range out {
		out[i] = amp * float32(math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func newTestSource(t *testing.T, samples []float32, cfg FrameConfig) *FrameSource {
	t.Helper()
	ctx := NewFakeContext(samples, cfg.SampleRate, false)
	capture, err := ctx.NewCapture(nil, CaptureConfig{SampleRate: uint32(cfg.SampleRate), Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	src, err := NewFrameSource(capture, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(src.Close)
	return src
}

func TestReadFrameSize(t *testing.T) {
	cfg := FrameConfig{SampleRate: 16000, FrameDuration: 100 * time.Millisecond, QueueSize: 256}
	src := newTestSource(t, sine(440, 500, 16000, 0.5), cfg)

	frame, err := src.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	if len(frame) != 1600 {
		t.Errorf("frame length = %d, want 1600", len(frame))
	}
}

func TestReadFramePreservesOrder(t *testing.T) {
	// A ramp makes reordering or loss visible.
	n := 16000 / 2
	ramp := make([]float32, n)
	for i := range ramp {
		ramp[i] = float32(i%1000) / 2000
	}
	cfg := FrameConfig{SampleRate: 16000, FrameDuration: 50 * time.Millisecond, QueueSize: 1024}
	src := newTestSource(t, ramp, cfg)

	var got []float32
	for len(got) < n {
		frame, err := src.ReadFrame()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, frame...)
	}

	const tolerance = 1.0 / 32767
	for i := 0; i < n; i++ {
		if diff := math.Abs(float64(got[i] - ramp[i])); diff > tolerance {
			t.Fatalf("sample %d: got %f, want %f", i, got[i], ramp[i])
		}
	}
}

// Replayed samples must come back within one int16 quantization step of
// what went in. Values like 0.0365 sit between PCM levels and expose any
// scale mismatch or truncation in the encode/decode pair.
func TestReadFrameSamplePrecision(t *testing.T) {
	vals := []float32{0.0365, -0.0365, 0.003, 0.4999, -0.25, 1.0, -1.0}
	samples := make([]float32, 1600)
	for i := range samples {
		samples[i] = vals[i%len(vals)]
	}
	cfg := FrameConfig{SampleRate: 16000, FrameDuration: 100 * time.Millisecond, QueueSize: 64}
	src := newTestSource(t, samples, cfg)

	frame, err := src.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	if len(frame) != len(samples) {
		t.Fatalf("frame length = %d, want %d", len(frame), len(samples))
	}
	const tolerance = 1.0 / 32767
	for i, want := range samples {
		if diff := math.Abs(float64(frame[i] - want)); diff > tolerance {
			t.Fatalf("sample %d: got %f, want %f, diff %g exceeds int16 precision", i, frame[i], want, diff)
		}
	}
}

func TestReadFrameTimesOutWithoutDevice(t *testing.T) {
	ctx := NewFakeContext(nil, 16000, false)
	capture, err := ctx.NewCapture(nil, CaptureConfig{SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	src, err := NewFrameSource(capture, FrameConfig{
		SampleRate:    16000,
		FrameDuration: 100 * time.Millisecond,
		ReadTimeout:   50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Stop the capture so no more chunks arrive, then drain and expect a timeout.
	capture.Stop()
	for {
		if _, err := src.ReadFrame(); err != nil {
			if !errors.Is(err, ErrReadTimeout) {
				t.Fatalf("unexpected error: %v", err)
			}
			return
		}
	}
}

func TestOverflowCountsDrops(t *testing.T) {
	cfg := FrameConfig{SampleRate: 16000, FrameDuration: 100 * time.Millisecond, QueueSize: 1}
	src := newTestSource(t, sine(440, 2000, 16000, 0.5), cfg)

	// Tiny queue plus a slow reader forces drops from the fast fake feeder.
	time.Sleep(100 * time.Millisecond)
	if src.Overflows() == 0 {
		t.Error("expected overflow drops with queue size 1")
	}
	// Capture must still deliver frames after overflowing.
	if _, err := src.ReadFrame(); err != nil {
		t.Fatalf("read after overflow failed: %v", err)
	}
}

func TestInvalidFrameConfig(t *testing.T) {
	ctx := NewFakeContext(nil, 16000, false)
	capture, _ := ctx.NewCapture(nil, CaptureConfig{})
	if _, err := NewFrameSource(capture, FrameConfig{SampleRate: 16000}); err == nil {
		t.Error("expected error for zero frame duration")
	}
}

func TestIsBluetooth(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"AirPods Pro", true},
		{"Sony WH-1000XM4", true},
		{"Built-in Microphone", false},
		{"USB Audio Device", false},
		{"Jabra Elite 75t", true},
	}
	for _, tc := range cases {
		if got := IsBluetooth(tc.name); got != tc.want {
			t.Errorf("IsBluetooth(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
