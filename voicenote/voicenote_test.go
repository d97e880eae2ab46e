package voicenote

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voiceNote(d time.Duration) Note {
	return Note{
		MessageID:   "m1",
		ChannelID:   "c1",
		Flags:       FlagVoiceMessage,
		Attachments: []Attachment{{URL: "https://cdn.example/voice-message.ogg", Duration: d}},
	}
}

func TestValidate_DurationBoundary(t *testing.T) {
	v := NewValidator(60 * time.Second)

	assert.NoError(t, v.Validate(voiceNote(60*time.Second)))
	assert.NoError(t, v.Validate(voiceNote(0)), "unreported duration passes")

	err := v.Validate(voiceNote(61 * time.Second))
	var exceeded *DurationExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, 61*time.Second, exceeded.Actual)
	assert.Equal(t, 60*time.Second, exceeded.Max)
}

func TestValidate_NotAVoiceNote(t *testing.T) {
	v := NewValidator(60 * time.Second)

	tests := []struct {
		name string
		note Note
	}{
		{"no flag with attachment", Note{Attachments: []Attachment{{URL: "u", Duration: time.Second}}}},
		{"no flag, too long", Note{Attachments: []Attachment{{URL: "u", Duration: time.Hour}}}},
		{"other flags only", Note{Flags: 1<<12 | 1<<14, Attachments: []Attachment{{URL: "u"}}}},
		{"flag without attachment", Note{Flags: FlagVoiceMessage}},
		{"empty", Note{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, v.Validate(tt.note), ErrNotAVoiceNote)
		})
	}
}

func TestNewValidator_DefaultsMax(t *testing.T) {
	assert.Equal(t, DefaultMaxDuration, NewValidator(0).MaxDuration)
	assert.Equal(t, DefaultMaxDuration, NewValidator(-time.Second).MaxDuration)
}

func TestFromDiscord(t *testing.T) {
	m := &discordgo.Message{
		ID:        "123",
		ChannelID: "456",
		Flags:     discordgo.MessageFlagsIsVoiceMessage,
		Author:    &discordgo.User{Username: "dromzeh", GlobalName: "Dromzeh"},
		Attachments: []*discordgo.MessageAttachment{
			{ID: "a1", URL: "https://cdn/voice-message.ogg", Filename: "voice-message.ogg", ContentType: "audio/ogg", Size: 2048, DurationSecs: 4.5},
			nil,
		},
	}

	n := FromDiscord(m)
	assert.True(t, n.HasVoiceFlag())
	assert.Equal(t, "dromzeh", n.AuthorName)
	assert.Equal(t, "456/123", n.Ref())
	require.Len(t, n.Attachments, 1)
	assert.Equal(t, 4500*time.Millisecond, n.Attachments[0].Duration)
	assert.Equal(t, "audio/ogg", n.Attachments[0].ContentType)

	assert.Equal(t, Note{}, FromDiscord(nil))
}
