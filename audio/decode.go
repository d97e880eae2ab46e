package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/go-audio/wav"
	"go.uber.org/zap"
)

// Decoder converts a container of any supported format into the canonical
// waveform.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (Waveform, error)
}

// FFmpegDecoder decodes with an ffmpeg subprocess. PCM WAV input that is
// already canonical skips the subprocess.
type FFmpegDecoder struct {
	// Binary is the ffmpeg executable, "ffmpeg" when empty.
	Binary string
	Logger *zap.SugaredLogger
}

// NewFFmpegDecoder returns a decoder using the given ffmpeg binary.
func NewFFmpegDecoder(binary string, logger *zap.SugaredLogger) *FFmpegDecoder {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &FFmpegDecoder{Binary: binary, Logger: logger}
}

// Decode implements Decoder.
func (d *FFmpegDecoder) Decode(ctx context.Context, data []byte) (Waveform, error) {
	if len(data) == 0 {
		return Waveform{}, ErrEmptyAudio
	}
	if w, ok := decodeCanonicalWAV(data); ok {
		return w, nil
	}
	return d.transcode(ctx, data)
}

func (d *FFmpegDecoder) transcode(ctx context.Context, data []byte) (Waveform, error) {
	bin := d.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le",
		"-ac", strconv.Itoa(CanonicalChannels),
		"-ar", strconv.Itoa(CanonicalSampleRate),
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Waveform{}, fmt.Errorf("ffmpeg interrupted: %w", ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		if d.Logger != nil {
			d.Logger.Warnw("ffmpeg failed", "error", err, "stderr", msg, "input_bytes", len(data))
		}
		return Waveform{}, fmt.Errorf("could not decode audio with ffmpeg: %w: %s", err, msg)
	}

	samples, err := pcmToSamples(stdout.Bytes())
	if err != nil {
		return Waveform{}, err
	}
	return Waveform{Samples: samples, SampleRate: CanonicalSampleRate, Channels: CanonicalChannels}, nil
}

func pcmToSamples(pcm []byte) ([]int16, error) {
	if len(pcm) < 2 {
		return nil, ErrEmptyAudio
	}
	samples := make([]int16, len(pcm)/2)
	if err := binary.Read(bytes.NewReader(pcm[:len(samples)*2]), binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("could not read pcm: %w", err)
	}
	return samples, nil
}

// DecodeWAV reads a 16-bit PCM WAV file without resampling.
func DecodeWAV(data []byte) (Waveform, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return Waveform{}, fmt.Errorf("could not read wav: %w", err)
		}
		return Waveform{}, errors.New("audio: not a valid wav file")
	}
	if dec.BitDepth != CanonicalBitDepth {
		return Waveform{}, fmt.Errorf("audio: unsupported wav bit depth %d", dec.BitDepth)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("could not read wav samples: %w", err)
	}
	if len(buf.Data) == 0 {
		return Waveform{}, ErrEmptyAudio
	}
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}
	return Waveform{Samples: samples, SampleRate: int(dec.SampleRate), Channels: int(dec.NumChans)}, nil
}

func decodeCanonicalWAV(data []byte) (Waveform, bool) {
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Waveform{}, false
	}
	w, err := DecodeWAV(data)
	if err != nil || !w.IsCanonical() {
		return Waveform{}, false
	}
	return w, true
}
