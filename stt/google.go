package stt

import (
	"context"
	"fmt"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/EasterCompany/dex-vmt-service/audio"
)

// syncLimit is the longest clip the synchronous Recognize call accepts.
const syncLimit = time.Minute

type speechAPI interface {
	recognize(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)
	longRunning(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error)
	Close() error
}

type speechClient struct {
	c *speech.Client
}

func (s speechClient) recognize(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
	return s.c.Recognize(ctx, req)
}

func (s speechClient) longRunning(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
	op, err := s.c.LongRunningRecognize(ctx, req)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx)
}

func (s speechClient) Close() error {
	return s.c.Close()
}

// Google transcribes with Google Cloud Speech-to-Text.
type Google struct {
	api      speechAPI
	language string
}

// NewGoogle creates a Google Cloud Speech client.
// It relies on Application Default Credentials for authentication.
func NewGoogle(ctx context.Context, language string) (*Google, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return newGoogle(speechClient{c: c}, language), nil
}

func newGoogle(api speechAPI, language string) *Google {
	if language == "" {
		language = "en-US"
	}
	return &Google{api: api, language: language}
}

// Name implements Recognizer.
func (g *Google) Name() string { return ProviderGoogle }

// Encoding implements Recognizer.
func (g *Google) Encoding() audio.Encoding { return audio.Linear16 }

// Close cleans up the speech client connection.
func (g *Google) Close() error {
	if g.api == nil {
		return nil
	}
	return g.api.Close()
}

// Recognize implements Recognizer. Clips longer than a minute go through
// the long-running API.
func (g *Google) Recognize(ctx context.Context, clip Clip) (string, error) {
	lang := clip.Language
	if lang == "" {
		lang = g.language
	}
	cfg := &speechpb.RecognitionConfig{
		Encoding:                   speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz:            int32(clip.SampleRate),
		AudioChannelCount:          int32(clip.Channels),
		LanguageCode:               lang,
		EnableAutomaticPunctuation: true,
	}
	content := &speechpb.RecognitionAudio{
		AudioSource: &speechpb.RecognitionAudio_Content{Content: clip.Audio},
	}

	var results []*speechpb.SpeechRecognitionResult
	if clip.Duration > syncLimit {
		resp, err := g.api.longRunning(ctx, &speechpb.LongRunningRecognizeRequest{Config: cfg, Audio: content})
		if err != nil {
			return "", fmt.Errorf("could not run long-running recognize: %w", err)
		}
		results = resp.GetResults()
	} else {
		resp, err := g.api.recognize(ctx, &speechpb.RecognizeRequest{Config: cfg, Audio: content})
		if err != nil {
			return "", fmt.Errorf("could not recognize: %w", err)
		}
		results = resp.GetResults()
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		if alts := r.GetAlternatives(); len(alts) > 0 {
			parts = append(parts, alts[0].GetTranscript())
		}
	}
	return joinTranscripts(parts)
}
