package audio

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int) Waveform {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16((i%200 - 100) * 300)
	}
	return Waveform{Samples: samples, SampleRate: CanonicalSampleRate, Channels: CanonicalChannels}
}

func TestEncode_WAVRoundTrip(t *testing.T) {
	w := sine(CanonicalSampleRate / 2)

	data, err := Encode(w, WAV)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))

	got, err := DecodeWAV(data)
	require.NoError(t, err)
	assert.Equal(t, w.SampleRate, got.SampleRate)
	assert.Equal(t, w.Channels, got.Channels)
	assert.Equal(t, w.Samples, got.Samples)
}

func TestEncode_Linear16IsLittleEndianPCM(t *testing.T) {
	w := Waveform{Samples: []int16{1, -2, 300}, SampleRate: CanonicalSampleRate, Channels: 1}

	data, err := Encode(w, Linear16)
	require.NoError(t, err)
	require.Len(t, data, 6)
	assert.Equal(t, int16(1), int16(binary.LittleEndian.Uint16(data[0:])))
	assert.Equal(t, int16(-2), int16(binary.LittleEndian.Uint16(data[2:])))
	assert.Equal(t, int16(300), int16(binary.LittleEndian.Uint16(data[4:])))
}

func TestEncode_Empty(t *testing.T) {
	_, err := Encode(Waveform{SampleRate: CanonicalSampleRate, Channels: 1}, WAV)
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestWaveform_Duration(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, sine(CanonicalSampleRate/2).Duration())
	stereo := Waveform{Samples: make([]int16, 96000), SampleRate: 48000, Channels: 2}
	assert.Equal(t, time.Second, stereo.Duration())
	assert.Zero(t, Waveform{}.Duration())
}

func TestFFmpegDecoder_CanonicalWAVSkipsSubprocess(t *testing.T) {
	w := sine(1600)
	data, err := Encode(w, WAV)
	require.NoError(t, err)

	// A missing binary proves ffmpeg is never started.
	d := NewFFmpegDecoder("/nonexistent/ffmpeg", nil)
	got, err := d.Decode(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, w.Samples, got.Samples)
}

func TestFFmpegDecoder_Errors(t *testing.T) {
	d := NewFFmpegDecoder("/nonexistent/ffmpeg", nil)

	_, err := d.Decode(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyAudio)

	_, err = d.Decode(context.Background(), []byte("OggS not really"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not decode audio with ffmpeg")
}

func TestPCMToSamples(t *testing.T) {
	_, err := pcmToSamples([]byte{1})
	assert.ErrorIs(t, err, ErrEmptyAudio)

	// A trailing odd byte is dropped.
	got, err := pcmToSamples([]byte{0x01, 0x00, 0xff, 0xff, 0x07})
	require.NoError(t, err)
	assert.Equal(t, []int16{1, -1}, got)
}
