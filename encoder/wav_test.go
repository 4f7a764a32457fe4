package encoder

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	samples := make([]float32, SampleRate) // 1s
	data, err := EncodeWAV(samples, SampleRate)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != WAVHeaderSize+len(samples)*2 {
		t.Fatalf("unexpected size %d", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != Channels {
		t.Errorf("channels = %d, want %d", got, Channels)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data size = %d, want %d", got, len(samples)*2)
	}
}

func TestEncodeWAVEmpty(t *testing.T) {
	if _, err := EncodeWAV(nil, SampleRate); err == nil {
		t.Error("expected error for empty buffer")
	}
}

func TestEncodeWAVBadRate(t *testing.T) {
	if _, err := EncodeWAV([]float32{0.1}, 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestRoundTrip(t *testing.T) {
	// Several frames of a 440Hz tone plus a low-level tail.
	n := SampleRate * 2
	in := make([]float32, n)
	for i := range in {
		in[i] = 0.5 * float32(math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}
	for i := n - 100; i < n; i++ {
		in[i] = 0.0001
	}

	data, err := EncodeWAV(in, SampleRate)
	if err != nil {
		t.Fatal(err)
	}
	out, rate, err := DecodeWAV(data)
	if err != nil {
		t.Fatal(err)
	}
	if rate != SampleRate {
		t.Errorf("rate = %d, want %d", rate, SampleRate)
	}
	if len(out) != len(in) {
		t.Fatalf("sample count = %d, want %d", len(out), len(in))
	}
	const tolerance = 1.0 / 32767
	for i := range in {
		if diff := math.Abs(float64(in[i] - out[i])); diff > tolerance {
			t.Fatalf("sample %d: in=%f out=%f diff=%f exceeds int16 precision", i, in[i], out[i], diff)
		}
	}
}

func TestQuantizeRounds(t *testing.T) {
	cases := []struct {
		in   float32
		want int16
	}{
		{0.0365, 1196}, // 0.0365*32767 = 1195.9955, truncation would give 1195
		{-0.0365, -1196},
		{0.99999, 32767},
		{1e-5, 0},
		{2.0, 32767},
		{-2.0, -32768},
	}
	for _, tc := range cases {
		if got := quantize(tc.in); got != tc.want {
			t.Errorf("quantize(%g) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestQuantizeClipping(t *testing.T) {
	data, err := EncodeWAV([]float32{2.0, -2.0}, SampleRate)
	if err != nil {
		t.Fatal(err)
	}
	hi := int16(binary.LittleEndian.Uint16(data[WAVHeaderSize:]))
	lo := int16(binary.LittleEndian.Uint16(data[WAVHeaderSize+2:]))
	if hi != 32767 {
		t.Errorf("positive clip = %d, want 32767", hi)
	}
	if lo != -32768 {
		t.Errorf("negative clip = %d, want -32768", lo)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, _, err := DecodeWAV([]byte("not a wav")); err == nil {
		t.Error("expected error for short data")
	}
	bad := make([]byte, 64)
	if _, _, err := DecodeWAV(bad); err == nil {
		t.Error("expected error for missing RIFF header")
	}
}
