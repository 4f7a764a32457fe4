// Package encoder serializes captured float PCM to the 16-bit linear PCM
// WAV container the transcription boundary expects.
package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16

	WAVHeaderSize = 44
)
