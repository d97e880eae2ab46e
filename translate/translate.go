// Package translate turns transcripts into another language. Failures are
// logged and reported as "no translation"; they never abort a transcription.
package translate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Backend is a translation service.
type Backend interface {
	Name() string
	Translate(ctx context.Context, text, targetCode string) (string, error)
}

// Result is a successful translation.
type Result struct {
	TargetCode string
	Text       string
}

// BreakerSettings tunes the circuit breaker in front of the backend.
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial request.
	OpenTimeout time.Duration
}

// Adapter wraps a Backend with a circuit breaker and error suppression.
type Adapter struct {
	backend Backend
	cb      *gobreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

// NewAdapter returns an adapter for backend. A nil backend yields an adapter
// that never translates.
func NewAdapter(backend Backend, s BreakerSettings, logger *zap.SugaredLogger) *Adapter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	a := &Adapter{backend: backend, logger: logger}
	if backend == nil {
		return a
	}
	a.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    backend.Name(),
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// A cancelled request says nothing about the backend.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("translation breaker changed state", "backend", name, "from", from.String(), "to", to.String())
		},
	})
	return a
}

// Enabled reports whether a backend is configured.
func (a *Adapter) Enabled() bool {
	return a != nil && a.backend != nil
}

// Translate returns the translation of text into targetCode. ok is false
// when the text is empty, no backend is configured or the backend failed.
func (a *Adapter) Translate(ctx context.Context, text, targetCode string) (Result, bool) {
	targetCode = strings.ToUpper(strings.TrimSpace(targetCode))
	if !a.Enabled() || strings.TrimSpace(text) == "" || targetCode == "" {
		return Result{}, false
	}

	out, err := a.cb.Execute(func() (interface{}, error) {
		return a.backend.Translate(ctx, text, targetCode)
	})
	if err != nil {
		a.logger.Warnw("translation unavailable",
			"backend", a.backend.Name(),
			"target", targetCode,
			"error", err,
		)
		return Result{}, false
	}
	translated, _ := out.(string)
	if strings.TrimSpace(translated) == "" {
		return Result{}, false
	}
	return Result{TargetCode: targetCode, Text: translated}, true
}

// Options selects a backend.
type Options struct {
	// Provider is "deepl", "openai" or empty for none.
	Provider string

	DeepLKey      string
	DeepLFreeTier bool
	DeepLBaseURL  string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
}

// NewBackend builds the backend named by opts.Provider. It returns nil,nil
// when translation is disabled.
func NewBackend(opts Options) (Backend, error) {
	switch strings.ToLower(opts.Provider) {
	case "", "none":
		return nil, nil
	case "deepl":
		return NewDeepL(opts.DeepLKey, opts.DeepLFreeTier, opts.DeepLBaseURL, nil)
	case "openai":
		return NewOpenAI(opts.OpenAIKey, opts.OpenAIBaseURL, opts.OpenAIModel)
	default:
		return nil, errors.New("translate: unknown provider " + opts.Provider)
	}
}
