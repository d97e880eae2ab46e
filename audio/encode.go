package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Encoding is a byte layout a recognizer accepts.
type Encoding int

const (
	// Linear16 is headerless little-endian signed 16-bit PCM.
	Linear16 Encoding = iota
	// WAV is 16-bit PCM inside a RIFF/WAVE container.
	WAV
)

func (e Encoding) String() string {
	switch e {
	case Linear16:
		return "linear16"
	case WAV:
		return "wav"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// MIMEType is the content type used when uploading encoded audio.
func (e Encoding) MIMEType() string {
	if e == WAV {
		return "audio/wav"
	}
	return "audio/l16"
}

// Encode serialises w in the requested encoding.
func Encode(w Waveform, enc Encoding) ([]byte, error) {
	if len(w.Samples) == 0 {
		return nil, ErrEmptyAudio
	}
	switch enc {
	case Linear16:
		var buf bytes.Buffer
		buf.Grow(len(w.Samples) * 2)
		if err := binary.Write(&buf, binary.LittleEndian, w.Samples); err != nil {
			return nil, fmt.Errorf("could not write pcm: %w", err)
		}
		return buf.Bytes(), nil
	case WAV:
		return encodeWAV(w)
	default:
		return nil, fmt.Errorf("audio: unsupported encoding %s", enc)
	}
}

func encodeWAV(w Waveform) ([]byte, error) {
	out := &seekBuffer{}
	enc := wav.NewEncoder(out, w.SampleRate, CanonicalBitDepth, w.Channels, 1)

	data := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		data[i] = int(s)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: w.Channels, SampleRate: w.SampleRate},
		Data:           data,
		SourceBitDepth: CanonicalBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("could not write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("could not finalise wav: %w", err)
	}
	return out.Bytes(), nil
}

// seekBuffer is an in-memory io.WriteSeeker; the wav encoder seeks back to
// patch chunk sizes on Close.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.buf) {
		b.buf = append(b.buf, make([]byte, end-len(b.buf))...)
	}
	copy(b.buf[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errors.New("audio: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("audio: negative position")
	}
	b.pos = int(abs)
	return abs, nil
}

func (b *seekBuffer) Bytes() []byte {
	return b.buf
}
