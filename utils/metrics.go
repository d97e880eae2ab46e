package utils

import "sync/atomic"

// Metrics holds counters for service operations
var (
	selections           int64
	transcripts          int64
	emptySpeech          int64
	transcriptionErrors  int64
	translations         int64
	translationsSkipped  int64
	menusOpened          int64
	menusExpired         int64
	interactionsReceived int64
	discordReconnects    int64
)

// IncrementSelections counts voice messages selected by users.
func IncrementSelections() {
	atomic.AddInt64(&selections, 1)
}

// IncrementTranscription counts one finished transcription by outcome name.
func IncrementTranscription(outcome string) {
	switch outcome {
	case "transcript":
		atomic.AddInt64(&transcripts, 1)
	case "empty_speech":
		atomic.AddInt64(&emptySpeech, 1)
	default:
		atomic.AddInt64(&transcriptionErrors, 1)
	}
}

// IncrementTranslation counts a translation attempt.
func IncrementTranslation(ok bool) {
	if ok {
		atomic.AddInt64(&translations, 1)
		return
	}
	atomic.AddInt64(&translationsSkipped, 1)
}

// IncrementMenusOpened atomically increments the menus opened counter
func IncrementMenusOpened() {
	atomic.AddInt64(&menusOpened, 1)
}

// IncrementMenusExpired atomically increments the menus expired counter
func IncrementMenusExpired() {
	atomic.AddInt64(&menusExpired, 1)
}

// IncrementInteractions atomically increments the interactions received counter
func IncrementInteractions() {
	atomic.AddInt64(&interactionsReceived, 1)
}

// IncrementReconnects atomically increments the reconnection counter
func IncrementReconnects() {
	atomic.AddInt64(&discordReconnects, 1)
}

// GetMetrics returns the current metrics as a map
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"selections":            atomic.LoadInt64(&selections),
		"transcripts":           atomic.LoadInt64(&transcripts),
		"empty_speech":          atomic.LoadInt64(&emptySpeech),
		"transcription_errors":  atomic.LoadInt64(&transcriptionErrors),
		"translations":          atomic.LoadInt64(&translations),
		"translations_skipped":  atomic.LoadInt64(&translationsSkipped),
		"menus_opened":          atomic.LoadInt64(&menusOpened),
		"menus_expired":         atomic.LoadInt64(&menusExpired),
		"interactions_received": atomic.LoadInt64(&interactionsReceived),
		"discord_reconnects":    atomic.LoadInt64(&discordReconnects),
	}
}
