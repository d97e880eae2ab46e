// Package log owns the process logger. It wraps zap and keeps the small
// Error/Fatal helper surface the rest of the service uses.
package log

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxDiscordLogLength = 1900

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	sugared = base.Sugar()
)

// Init builds the process logger. development switches to the human-readable
// console encoder; level is any zapcore level name ("debug", "info", ...).
func Init(level string, development bool) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.Set(level); err != nil {
			return fmt.Errorf("could not parse log level %q: %w", level, err)
		}
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("could not build logger: %w", err)
	}
	set(l)
	return nil
}

// AttachDiscord mirrors error-level entries into a Discord channel. It is a
// no-op when channelID is empty.
func AttachDiscord(s *discordgo.Session, channelID string) {
	if s == nil || channelID == "" {
		return
	}
	mu.RLock()
	current := base
	mu.RUnlock()

	set(current.WithOptions(zap.Hooks(func(e zapcore.Entry) error {
		if e.Level < zapcore.ErrorLevel {
			return nil
		}
		msg := e.Message
		if len(msg) > maxDiscordLogLength {
			msg = msg[:maxDiscordLogLength] + "..."
		}
		// Hooks run on the logging goroutine; never block it on the REST call.
		go func() {
			_, _ = s.ChannelMessageSend(channelID, "```\n"+msg+"```")
		}()
		return nil
	})))
}

func set(l *zap.Logger) {
	mu.Lock()
	base = l
	sugared = l.Sugar()
	mu.Unlock()
}

// L returns the process logger.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugared
}

// Named returns a child logger for a component.
func Named(name string) *zap.SugaredLogger {
	return L().Named(name)
}

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}

// Error logs an error together with the caller location.
func Error(context string, err error) {
	_, file, line, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		parts := strings.Split(file, "/")
		if len(parts) > 2 {
			file = strings.Join(parts[len(parts)-2:], "/")
		}
		caller = fmt.Sprintf("%s:%d", file, line)
	}
	L().Errorw(context, "caller", caller, "error", err)
}

// Fatal logs an error and then exits the program.
func Fatal(context string, err error) {
	Error(context, err)
	Sync()
	os.Exit(1)
}
