package stt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EasterCompany/dex-vmt-service/audio"
)

type fakeSpeech struct {
	syncCalls int
	longCalls int
	lastCfg   *speechpb.RecognitionConfig
	results   []*speechpb.SpeechRecognitionResult
	err       error
}

func (f *fakeSpeech) recognize(_ context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
	f.syncCalls++
	f.lastCfg = req.GetConfig()
	if f.err != nil {
		return nil, f.err
	}
	return &speechpb.RecognizeResponse{Results: f.results}, nil
}

func (f *fakeSpeech) longRunning(_ context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
	f.longCalls++
	f.lastCfg = req.GetConfig()
	if f.err != nil {
		return nil, f.err
	}
	return &speechpb.LongRunningRecognizeResponse{Results: f.results}, nil
}

func (f *fakeSpeech) Close() error { return nil }

func result(text string) *speechpb.SpeechRecognitionResult {
	return &speechpb.SpeechRecognitionResult{
		Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: text}},
	}
}

func clip(d time.Duration) Clip {
	return Clip{Audio: []byte{0, 0}, Encoding: audio.Linear16, SampleRate: 16000, Channels: 1, Duration: d}
}

func TestGoogle_JoinsResults(t *testing.T) {
	f := &fakeSpeech{results: []*speechpb.SpeechRecognitionResult{result("hello "), result(" world"), {}}}
	g := newGoogle(f, "")

	text, err := g.Recognize(context.Background(), clip(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, 1, f.syncCalls)
	assert.Equal(t, "en-US", f.lastCfg.GetLanguageCode())
	assert.Equal(t, int32(16000), f.lastCfg.GetSampleRateHertz())
	assert.Equal(t, speechpb.RecognitionConfig_LINEAR16, f.lastCfg.GetEncoding())
}

func TestGoogle_LongClipsUseLongRunning(t *testing.T) {
	f := &fakeSpeech{results: []*speechpb.SpeechRecognitionResult{result("long")}}
	g := newGoogle(f, "de-DE")

	_, err := g.Recognize(context.Background(), clip(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 0, f.syncCalls)
	assert.Equal(t, 1, f.longCalls)
	assert.Equal(t, "de-DE", f.lastCfg.GetLanguageCode())
}

func TestGoogle_NoSpeechAndErrors(t *testing.T) {
	g := newGoogle(&fakeSpeech{}, "")
	_, err := g.Recognize(context.Background(), clip(time.Second))
	assert.ErrorIs(t, err, ErrNoSpeech)

	boom := errors.New("quota exceeded")
	g = newGoogle(&fakeSpeech{err: boom}, "")
	_, err = g.Recognize(context.Background(), clip(time.Second))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNoSpeech)
}

func TestWhisper_Recognize(t *testing.T) {
	var gotPath, gotModel, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		gotLang = r.FormValue("language")
		if f, _, err := r.FormFile("file"); assert.NoError(t, err) {
			body, _ := io.ReadAll(f)
			assert.Equal(t, []byte("RIFFdata"), body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "  hola mundo "})
	}))
	defer srv.Close()

	rec, err := NewWhisper("sk-test", srv.URL+"/v1", "", "es-ES")
	require.NoError(t, err)
	assert.Equal(t, audio.WAV, rec.Encoding())

	text, err := rec.Recognize(context.Background(), Clip{Audio: []byte("RIFFdata"), Encoding: audio.WAV})
	require.NoError(t, err)
	assert.Equal(t, "hola mundo", text)
	assert.True(t, strings.HasSuffix(gotPath, "/audio/transcriptions"))
	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "es", gotLang)
}

func TestWhisper_EmptyTextIsNoSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": ""}`))
	}))
	defer srv.Close()

	rec, err := NewWhisper("sk-test", srv.URL+"/v1", "", "")
	require.NoError(t, err)
	_, err = rec.Recognize(context.Background(), Clip{Audio: []byte("x")})
	assert.ErrorIs(t, err, ErrNoSpeech)
}

func TestGemini_Recognize(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"good morning"}]}}]}`))
	}))
	defer srv.Close()

	rec, err := NewGemini(context.Background(), "key", "", srv.URL)
	require.NoError(t, err)

	text, err := rec.Recognize(context.Background(), Clip{Audio: []byte("RIFF"), Encoding: audio.WAV})
	require.NoError(t, err)
	assert.Equal(t, "good morning", text)
	assert.Contains(t, gotPath, defaultGeminiModel+":generateContent")
}

func TestNew_Providers(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: "vosk"})
	assert.ErrorContains(t, err, "unknown provider")

	_, err = New(context.Background(), Options{Provider: ProviderWhisper})
	assert.ErrorContains(t, err, "API key is required")

	rec, err := New(context.Background(), Options{Provider: "Whisper", OpenAIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ProviderWhisper, rec.Name())
}

func TestWhisperLanguage(t *testing.T) {
	assert.Equal(t, "en", whisperLanguage("en-US"))
	assert.Equal(t, "pt", whisperLanguage("pt_BR"))
	assert.Equal(t, "", whisperLanguage(""))
}
