package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	before := GetMetrics()

	IncrementSelections()
	IncrementTranscription("transcript")
	IncrementTranscription("empty_speech")
	IncrementTranscription("service_error")
	IncrementTranslation(true)
	IncrementTranslation(false)
	IncrementMenusOpened()
	IncrementMenusExpired()

	after := GetMetrics()
	for _, k := range []string{"selections", "transcripts", "empty_speech", "transcription_errors", "translations", "translations_skipped", "menus_opened", "menus_expired"} {
		assert.Equal(t, before[k]+1, after[k], k)
	}
	assert.Equal(t, before["interactions_received"], after["interactions_received"])
}

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	assert.Equal(t, "dev", v.Version)
	assert.NotEmpty(t, v.Arch)
	assert.Contains(t, v.String(), "dev (unknown@unknown")
}
