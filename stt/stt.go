// Package stt wraps the speech-recognition backends used to transcribe
// whole voice-message clips.
package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EasterCompany/dex-vmt-service/audio"
)

// ErrNoSpeech is returned when a backend recognised no words in the clip.
var ErrNoSpeech = errors.New("stt: no speech recognised")

// Clip is one encoded clip ready for recognition.
type Clip struct {
	Audio      []byte
	Encoding   audio.Encoding
	SampleRate int
	Channels   int
	Duration   time.Duration
	// Language is a BCP-47 hint; backends that detect language may ignore it.
	Language string
}

// Recognizer transcribes a whole clip in one request.
type Recognizer interface {
	Name() string
	// Encoding is the byte layout Recognize expects in Clip.Audio.
	Encoding() audio.Encoding
	Recognize(ctx context.Context, clip Clip) (string, error)
	Close() error
}

// Provider names accepted by New.
const (
	ProviderGoogle  = "google"
	ProviderWhisper = "whisper"
	ProviderGemini  = "gemini"
)

// Options selects and configures a backend.
type Options struct {
	Provider string
	Language string

	OpenAIKey     string
	OpenAIBaseURL string
	WhisperModel  string

	GeminiKey   string
	GeminiModel string
}

// New constructs the recognizer named by opts.Provider.
func New(ctx context.Context, opts Options) (Recognizer, error) {
	switch strings.ToLower(opts.Provider) {
	case "", ProviderGoogle:
		return NewGoogle(ctx, opts.Language)
	case ProviderWhisper:
		return NewWhisper(opts.OpenAIKey, opts.OpenAIBaseURL, opts.WhisperModel, opts.Language)
	case ProviderGemini:
		return NewGemini(ctx, opts.GeminiKey, opts.GeminiModel, "")
	default:
		return nil, fmt.Errorf("stt: unknown provider %q", opts.Provider)
	}
}

// joinTranscripts trims and joins fragments, returning ErrNoSpeech when
// nothing is left.
func joinTranscripts(parts []string) (string, error) {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return "", ErrNoSpeech
	}
	return strings.Join(kept, " "), nil
}
