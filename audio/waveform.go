// Package audio turns voice-message containers into the canonical waveform
// used for speech recognition and re-encodes it for a recognizer.
package audio

import (
	"errors"
	"time"
)

const (
	// CanonicalSampleRate is the rate every clip is resampled to.
	CanonicalSampleRate = 16000
	// CanonicalChannels is the channel count every clip is downmixed to.
	CanonicalChannels = 1
	// CanonicalBitDepth is the sample width of the waveform.
	CanonicalBitDepth = 16
)

// ErrEmptyAudio is returned when a clip decodes to zero samples.
var ErrEmptyAudio = errors.New("audio: decoded clip has no samples")

// Waveform is decoded signed 16-bit PCM, interleaved when Channels > 1.
type Waveform struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Duration is the playback length of the waveform.
func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 || w.Channels <= 0 {
		return 0
	}
	frames := len(w.Samples) / w.Channels
	return time.Duration(frames) * time.Second / time.Duration(w.SampleRate)
}

// IsCanonical reports whether the waveform already has the canonical shape.
func (w Waveform) IsCanonical() bool {
	return w.SampleRate == CanonicalSampleRate && w.Channels == CanonicalChannels
}
