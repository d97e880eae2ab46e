package transcribe

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3/pkg/media/oggwriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/EasterCompany/dex-vmt-service/audio"
	"github.com/EasterCompany/dex-vmt-service/stt"
	"github.com/EasterCompany/dex-vmt-service/voicenote"
)

type fakeDecoder struct {
	wave audio.Waveform
	err  error
	got  []byte
}

func (d *fakeDecoder) Decode(_ context.Context, data []byte) (audio.Waveform, error) {
	d.got = data
	return d.wave, d.err
}

type fakeRecognizer struct {
	enc  audio.Encoding
	text string
	err  error
	clip stt.Clip
}

func (r *fakeRecognizer) Name() string             { return "fake" }
func (r *fakeRecognizer) Encoding() audio.Encoding { return r.enc }
func (r *fakeRecognizer) Close() error             { return nil }
func (r *fakeRecognizer) Recognize(_ context.Context, c stt.Clip) (string, error) {
	r.clip = c
	return r.text, r.err
}

type staticFetcher struct {
	data []byte
	err  error
}

func (f staticFetcher) Fetch(context.Context, string) ([]byte, error) { return f.data, f.err }

func wave(n int) audio.Waveform {
	return audio.Waveform{Samples: make([]int16, n), SampleRate: audio.CanonicalSampleRate, Channels: 1}
}

func testNote() voicenote.Note {
	return voicenote.Note{
		MessageID:   "m",
		ChannelID:   "c",
		Flags:       voicenote.FlagVoiceMessage,
		Attachments: []voicenote.Attachment{{URL: "https://cdn/voice.ogg"}},
	}
}

func TestTranscribe_Transcript(t *testing.T) {
	rec := &fakeRecognizer{enc: audio.WAV, text: "hello there"}
	p := New(staticFetcher{}, &fakeDecoder{wave: wave(16000)}, rec, time.Minute, nil)

	res := p.Transcribe(context.Background(), []byte("container"), "ref-1")
	assert.Equal(t, OutcomeTranscript, res.Outcome)
	assert.Equal(t, "hello there", res.Text)
	assert.Equal(t, "ref-1", res.SourceRef)
	assert.NoError(t, res.Err)

	// The recognizer receives the clip in the encoding it asked for.
	assert.Equal(t, audio.WAV, rec.clip.Encoding)
	assert.Equal(t, "RIFF", string(rec.clip.Audio[:4]))
	assert.Equal(t, time.Second, rec.clip.Duration)
}

func TestTranscribe_Linear16ForRawRecognizers(t *testing.T) {
	rec := &fakeRecognizer{enc: audio.Linear16, text: "x"}
	p := New(staticFetcher{}, &fakeDecoder{wave: wave(100)}, rec, 0, nil)

	p.Transcribe(context.Background(), []byte("c"), "r")
	assert.Len(t, rec.clip.Audio, 200)
}

func TestTranscribe_EmptySpeech(t *testing.T) {
	tests := []struct {
		name string
		rec  *fakeRecognizer
	}{
		{"no speech error", &fakeRecognizer{enc: audio.WAV, err: stt.ErrNoSpeech}},
		{"blank text", &fakeRecognizer{enc: audio.WAV, text: "  \n\t "}},
		{"empty text", &fakeRecognizer{enc: audio.WAV}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(staticFetcher{}, &fakeDecoder{wave: wave(160)}, tt.rec, time.Minute, nil)

			res := p.Transcribe(context.Background(), []byte("c"), "r")
			assert.Equal(t, OutcomeEmptySpeech, res.Outcome)
			assert.Empty(t, res.Text)
			assert.NoError(t, res.Err)
		})
	}
}

func TestTranscribe_ServiceErrors(t *testing.T) {
	boom := errors.New("backend unreachable")
	tests := []struct {
		name    string
		decoder *fakeDecoder
		rec     *fakeRecognizer
		want    error
	}{
		{"decode fails", &fakeDecoder{err: boom}, &fakeRecognizer{}, boom},
		{"zero samples", &fakeDecoder{wave: wave(0)}, &fakeRecognizer{}, audio.ErrEmptyAudio},
		{"backend fails", &fakeDecoder{wave: wave(10)}, &fakeRecognizer{err: boom}, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(staticFetcher{}, tt.decoder, tt.rec, time.Minute, nil)
			res := p.Transcribe(context.Background(), []byte("c"), "r")
			assert.Equal(t, OutcomeServiceError, res.Outcome)
			assert.ErrorIs(t, res.Err, tt.want)
			assert.Empty(t, res.Text)
		})
	}
}

func TestTranscribeNote_FetchesFirstAttachment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/voice.ogg", r.URL.Path)
		_, _ = w.Write([]byte("opus-bytes"))
	}))
	defer srv.Close()

	dec := &fakeDecoder{wave: wave(16)}
	p := New(NewHTTPFetcher(1024, time.Second), dec, &fakeRecognizer{text: "ok"}, time.Minute, nil)

	n := testNote()
	n.Attachments[0].URL = srv.URL + "/voice.ogg"
	res := p.TranscribeNote(context.Background(), n)
	assert.Equal(t, OutcomeTranscript, res.Outcome)
	assert.Equal(t, []byte("opus-bytes"), dec.got)
	assert.Equal(t, "c/m", res.SourceRef)
}

func TestTranscribeNote_FetchFailureIsServiceError(t *testing.T) {
	boom := errors.New("404")
	p := New(staticFetcher{err: boom}, &fakeDecoder{}, &fakeRecognizer{}, time.Minute, nil)

	res := p.TranscribeNote(context.Background(), testNote())
	assert.Equal(t, OutcomeServiceError, res.Outcome)
	assert.ErrorIs(t, res.Err, boom)

	res = p.TranscribeNote(context.Background(), voicenote.Note{})
	assert.ErrorIs(t, res.Err, voicenote.ErrNotAVoiceNote)
}

func TestTranscribeNote_WarnsWhenUnreportedDurationIsTooLong(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	clip := oggClip(t, 3*time.Second)
	p := New(staticFetcher{data: clip}, &fakeDecoder{wave: wave(16)}, &fakeRecognizer{text: "ok"}, time.Second, zap.New(core).Sugar())

	res := p.TranscribeNote(context.Background(), testNote())
	assert.Equal(t, OutcomeTranscript, res.Outcome, "the clip is still transcribed")
	require.Equal(t, 1, logs.FilterMessage("voice message without reported duration exceeds the limit").Len())

	// A reported duration means the validator already checked it.
	logs.TakeAll()
	n := testNote()
	n.Attachments[0].Duration = 900 * time.Millisecond
	p.TranscribeNote(context.Background(), n)
	assert.Zero(t, logs.Len())
}

func TestHTTPFetcher_Limits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(bytes.Repeat([]byte("a"), 64))
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(16, time.Second).Fetch(context.Background(), srv.URL+"/big")
	assert.ErrorIs(t, err, ErrTooLarge)

	data, err := NewHTTPFetcher(64, time.Second).Fetch(context.Background(), srv.URL+"/exact")
	require.NoError(t, err)
	assert.Len(t, data, 64)

	_, err = NewHTTPFetcher(64, time.Second).Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "404")
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "empty_speech", OutcomeEmptySpeech.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}

func oggClip(t *testing.T, d time.Duration) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := oggwriter.NewWith(&buf, 48000, 1)
	require.NoError(t, err)
	packets := int(d/(20*time.Millisecond)) + 5
	for i := 0; i < packets; i++ {
		require.NoError(t, w.WriteRTP(&rtp.Packet{
			Header:  rtp.Header{Version: 2, SequenceNumber: uint16(i), Timestamp: uint32(i * 960)},
			Payload: []byte{0xf8, 0xff, 0xfe},
		}))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}
