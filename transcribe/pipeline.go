// Package transcribe turns a voice message into text.
//
// A run fetches the clip, decodes it to the canonical waveform, re-encodes
// it for the configured recognizer and maps the outcome to one of three
// tagged results. Every failure is reported as a result; nothing is
// partially delivered.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/EasterCompany/dex-vmt-service/audio"
	"github.com/EasterCompany/dex-vmt-service/stt"
	"github.com/EasterCompany/dex-vmt-service/voicenote"
)

// Outcome tags a transcription result.
type Outcome int

const (
	OutcomeTranscript Outcome = iota
	OutcomeEmptySpeech
	OutcomeServiceError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTranscript:
		return "transcript"
	case OutcomeEmptySpeech:
		return "empty_speech"
	case OutcomeServiceError:
		return "service_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of one run. Text is set only for OutcomeTranscript
// and Err only for OutcomeServiceError.
type Result struct {
	Outcome   Outcome
	Text      string
	SourceRef string
	Err       error
}

// Pipeline runs transcriptions. It holds no per-run state and is safe for
// concurrent use.
type Pipeline struct {
	fetcher    Fetcher
	decoder    audio.Decoder
	recognizer stt.Recognizer
	// maxDuration is only used to flag clips whose duration the platform
	// did not report.
	maxDuration time.Duration
	logger      *zap.SugaredLogger
}

// New builds a pipeline.
func New(fetcher Fetcher, decoder audio.Decoder, recognizer stt.Recognizer, maxDuration time.Duration, logger *zap.SugaredLogger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{
		fetcher:     fetcher,
		decoder:     decoder,
		recognizer:  recognizer,
		maxDuration: maxDuration,
		logger:      logger,
	}
}

// TranscribeNote downloads the note's clip and transcribes it.
func (p *Pipeline) TranscribeNote(ctx context.Context, note voicenote.Note) Result {
	ref := note.Ref()
	clip, ok := note.Clip()
	if !ok {
		return p.fail(ref, voicenote.ErrNotAVoiceNote)
	}
	data, err := p.fetcher.Fetch(ctx, clip.URL)
	if err != nil {
		return p.fail(ref, err)
	}
	return p.run(ctx, data, ref, clip.Duration)
}

// Transcribe transcribes raw container bytes.
func (p *Pipeline) Transcribe(ctx context.Context, data []byte, ref string) Result {
	return p.run(ctx, data, ref, 0)
}

func (p *Pipeline) run(ctx context.Context, data []byte, ref string, reported time.Duration) Result {
	start := time.Now()
	p.probe(data, ref, reported)

	wave, err := p.decoder.Decode(ctx, data)
	if err != nil {
		return p.fail(ref, fmt.Errorf("decode: %w", err))
	}
	if len(wave.Samples) == 0 {
		return p.fail(ref, audio.ErrEmptyAudio)
	}

	enc := p.recognizer.Encoding()
	encoded, err := audio.Encode(wave, enc)
	if err != nil {
		return p.fail(ref, fmt.Errorf("encode %s: %w", enc, err))
	}

	text, err := p.recognizer.Recognize(ctx, stt.Clip{
		Audio:      encoded,
		Encoding:   enc,
		SampleRate: wave.SampleRate,
		Channels:   wave.Channels,
		Duration:   wave.Duration(),
	})
	switch {
	case errors.Is(err, stt.ErrNoSpeech), err == nil && strings.TrimSpace(text) == "":
		p.logger.Infow("no speech recognised", "ref", ref, "recognizer", p.recognizer.Name())
		return Result{Outcome: OutcomeEmptySpeech, SourceRef: ref}
	case err != nil:
		return p.fail(ref, fmt.Errorf("%s: %w", p.recognizer.Name(), err))
	}

	p.logger.Infow("transcribed voice message",
		"ref", ref,
		"recognizer", p.recognizer.Name(),
		"audio", wave.Duration(),
		"took", time.Since(start),
		"chars", len(text),
	)
	return Result{Outcome: OutcomeTranscript, Text: text, SourceRef: ref}
}

// probe logs container details and flags clips over the limit that were
// let through because no duration was reported.
func (p *Pipeline) probe(data []byte, ref string, reported time.Duration) {
	if !audio.IsOgg(data) {
		return
	}
	info, err := audio.Probe(data)
	if err != nil {
		p.logger.Debugw("could not probe ogg container", "ref", ref, "error", err)
		return
	}
	p.logger.Debugw("probed voice message",
		"ref", ref,
		"channels", info.Channels,
		"input_rate", info.InputRate,
		"duration", info.Duration,
	)
	if reported == 0 && p.maxDuration > 0 && info.Duration > p.maxDuration {
		p.logger.Warnw("voice message without reported duration exceeds the limit",
			"ref", ref,
			"duration", info.Duration,
			"max", p.maxDuration,
		)
	}
}

func (p *Pipeline) fail(ref string, err error) Result {
	p.logger.Errorw("transcription failed", "ref", ref, "error", err)
	return Result{Outcome: OutcomeServiceError, SourceRef: ref, Err: err}
}
