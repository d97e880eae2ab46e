package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/EasterCompany/dex-vmt-service/audio"
)

// Whisper transcribes with the OpenAI audio transcription endpoint.
type Whisper struct {
	client   *openai.Client
	model    string
	language string
}

// NewWhisper creates an OpenAI transcription client. baseURL may be empty.
func NewWhisper(apiKey, baseURL, model, language string) (*Whisper, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &Whisper{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: whisperLanguage(language),
	}, nil
}

// whisperLanguage reduces a BCP-47 tag to the ISO-639-1 code the API expects.
func whisperLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// Name implements Recognizer.
func (w *Whisper) Name() string { return ProviderWhisper }

// Encoding implements Recognizer.
func (w *Whisper) Encoding() audio.Encoding { return audio.WAV }

// Close implements Recognizer.
func (w *Whisper) Close() error { return nil }

// Recognize implements Recognizer.
func (w *Whisper) Recognize(ctx context.Context, clip Clip) (string, error) {
	lang := w.language
	if clip.Language != "" {
		lang = whisperLanguage(clip.Language)
	}
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: "voice-message.wav",
		Reader:   bytes.NewReader(clip.Audio),
		Language: lang,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI transcription API error: %w", err)
	}
	return joinTranscripts([]string{resp.Text})
}
