package stt

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/EasterCompany/dex-vmt-service/audio"
)

const defaultGeminiModel = "gemini-2.0-flash"

const geminiPrompt = "Transcribe the speech in this audio exactly as spoken. " +
	"Reply with the transcript only. If there is no speech, reply with nothing."

// Gemini transcribes by sending the clip to a multimodal Gemini model.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini API client. baseURL is only set in tests.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	cc := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{client: client, model: model}, nil
}

// Name implements Recognizer.
func (g *Gemini) Name() string { return ProviderGemini }

// Encoding implements Recognizer.
func (g *Gemini) Encoding() audio.Encoding { return audio.WAV }

// Close implements Recognizer.
func (g *Gemini) Close() error { return nil }

// Recognize implements Recognizer.
func (g *Gemini) Recognize(ctx context.Context, clip Clip) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(geminiPrompt),
		genai.NewPartFromBytes(clip.Audio, clip.Encoding.MIMEType()),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return joinTranscripts([]string{resp.Text()})
}
